package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "192.168.1.47", expected: "192.168.1.0"},
		{input: "172.16.50.255", expected: "172.16.50.0"},
		{input: "::ffff:10.1.2.3", expected: "10.1.2.0"},
		{input: "2001:db8:85a3::8a2e:370:7334", expected: "2001:db8:85a3::"},
		{input: "fe80::1", expected: "fe80::"},
		{input: "", expected: "unknown"},
		{input: "unknown", expected: "unknown"},
		{input: "192.168.1", expected: "invalid"},
		{input: "192.168.1.1:8080", expected: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnonymizeIP(tt.input))
		})
	}
}

func TestAnonymizeIPGroupsByNetwork(t *testing.T) {
	assert.Equal(t, AnonymizeIP("192.168.1.1"), AnonymizeIP("192.168.1.254"))
	assert.NotEqual(t, AnonymizeIP("192.168.1.47"), AnonymizeIP("192.168.2.47"))
}
