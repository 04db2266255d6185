package string

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimStrings(t *testing.T) {
	a, b := " txn-1 ", "\t5860356276\n"
	TrimStrings(&a, &b)
	assert.Equal(t, "txn-1", a)
	assert.Equal(t, "5860356276", b)
}

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"eng", "fra"}, DedupeAndTrim([]string{" eng", "fra", "", "eng ", "  "}))
	assert.Empty(t, DedupeAndTrim(nil))
}
