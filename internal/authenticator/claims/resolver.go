// Package claims turns a decrypted, multi-language identity record into the
// consent-filtered claim set that is signed for a relying party.
package claims

import (
	"context"
	"log/slog"
	"strings"
)

// Config names the special claims and the separators used when building
// output keys and values.
type Config struct {
	SubjectClaim      string
	IndividualIDClaim string
	PictureClaim      string
	PicturePrefix     string
	FaceAttribute     string
	AddressClaim      string
	AddressSeparator  string
	NameSeparator     string
	AddressSubset     []string
	AttributeLangSep  string
	ClaimsLangSep     string
	FormattedKey      string
}

// DefaultConfig returns the claim settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		SubjectClaim:      "sub",
		IndividualIDClaim: "individual_id",
		PictureClaim:      "picture",
		PicturePrefix:     "data:image/jpeg;base64,",
		FaceAttribute:     "Face",
		AddressClaim:      "address",
		AddressSeparator:  " ",
		NameSeparator:     " ",
		AttributeLangSep:  "_",
		ClaimsLangSep:     "#",
		FormattedKey:      "formatted",
	}
}

// Input is one resolution request.
type Input struct {
	Record       *IdentityRecord
	Subject      string
	IndividualID string
	Claims       []string
	Locales      []string
}

// Resolver is stateless between calls and safe for concurrent use.
type Resolver struct {
	schema    SchemaLookup
	converter BiometricConverter
	cfg       Config
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for skipped claims.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver builds a Resolver. A nil converter falls back to
// PassthroughConverter.
func NewResolver(schema SchemaLookup, converter BiometricConverter, cfg Config, opts ...Option) *Resolver {
	if converter == nil {
		converter = PassthroughConverter{}
	}
	r := &Resolver{
		schema:    schema,
		converter: converter,
		cfg:       cfg,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Normalize regroups a raw record under logical attribute names. Each raw key
// goes through ParseAttributeKey; its values are re-tagged with the key's
// language when the key carries one. Within a logical attribute the first
// value seen for a language wins.
func (r *Resolver) Normalize(rec *IdentityRecord) *IdentityRecord {
	out := NewIdentityRecord()
	if rec == nil {
		return out
	}
	for _, raw := range rec.Keys() {
		key := ParseAttributeKey(r.schema, raw, r.cfg.AttributeLangSep)
		logical := key.Name
		if attrs, err := r.schema.AttributesFor(key.Name); err == nil && len(attrs) > 0 {
			logical = attrs[0]
		}
		vals, _ := rec.Values(raw)
		for _, v := range vals {
			if key.Language != "" {
				v.Language = key.Language
			}
			if v.Language != "" && hasLanguage(out, logical, v.Language) {
				continue
			}
			out.Add(logical, v)
		}
	}
	return out
}

func hasLanguage(rec *IdentityRecord, key, lang string) bool {
	existing, _ := rec.Values(key)
	for _, e := range existing {
		if strings.EqualFold(e.Language, lang) {
			return true
		}
	}
	return false
}

// Resolve builds the claim map. The subject claim is always present; every
// other consented claim is emitted only when the record has data for it.
func (r *Resolver) Resolve(ctx context.Context, in Input) map[string]any {
	out := map[string]any{r.cfg.SubjectClaim: in.Subject}
	norm := r.Normalize(in.Record)
	// Locale matching is case sensitive: FR-CA does not select a stored fra tag.
	codes := NormalizeLocales(in.Locales)

	for _, claim := range in.Claims {
		switch claim {
		case "", r.cfg.SubjectClaim:
			continue
		case r.cfg.IndividualIDClaim:
			out[claim] = in.IndividualID
			continue
		case r.cfg.PictureClaim:
			r.resolvePicture(ctx, out, claim, norm)
			continue
		}

		attrs, err := r.schema.AttributesFor(claim)
		if err != nil || len(attrs) == 0 {
			r.logger.WarnContext(ctx, "skipping unknown claim", "claim", claim, "error", err)
			continue
		}
		if len(attrs) == 1 {
			r.resolveSimple(ctx, out, claim, attrs[0], norm, codes)
			continue
		}
		r.resolveComposite(out, claim, attrs, norm, codes)
	}
	return out
}

func (r *Resolver) resolvePicture(ctx context.Context, out map[string]any, claim string, norm *IdentityRecord) {
	vals, ok := norm.Values(r.cfg.FaceAttribute)
	if !ok || len(vals) == 0 {
		r.logger.InfoContext(ctx, "face biometric not in identity, skipping claim", "claim", claim)
		return
	}
	img, err := r.converter.Convert(ctx, vals[0].Value)
	if err != nil {
		r.logger.WarnContext(ctx, "face conversion failed, skipping claim", "claim", claim, "error", err)
		return
	}
	if img == "" {
		return
	}
	out[claim] = r.cfg.PicturePrefix + img
}

func (r *Resolver) resolveSimple(ctx context.Context, out map[string]any, claim, attr string, norm *IdentityRecord, codes []string) {
	vals, ok := norm.Values(attr)
	if !ok || len(vals) == 0 {
		r.logger.DebugContext(ctx, "attribute not in identity, skipping claim", "claim", claim, "attribute", attr)
		return
	}
	langs := languageIndex(vals)
	var matched []string
	for _, code := range codes {
		if _, ok := langs[code]; ok {
			matched = append(matched, code)
		}
	}

	switch len(matched) {
	case 0:
		out[claim] = vals[0].Value
	case 1:
		if v := valuesInLanguage(vals, langs[matched[0]]); len(v) > 0 {
			out[claim] = v[len(v)-1]
		}
	default:
		for _, code := range matched {
			if v := valuesInLanguage(vals, langs[code]); len(v) > 0 {
				out[claim+r.cfg.ClaimsLangSep+code] = v[len(v)-1]
			}
		}
	}
}

// resolveComposite emits one nested object per locale context. With more than
// one requested locale each context is suffixed; otherwise a single unsuffixed
// context is used.
func (r *Resolver) resolveComposite(out map[string]any, claim string, attrs []string, norm *IdentityRecord, codes []string) {
	sep := r.cfg.NameSeparator
	var subset []string
	if claim == r.cfg.AddressClaim {
		sep = r.cfg.AddressSeparator
		subset = r.cfg.AddressSubset
	}

	contexts := []string{""}
	if len(codes) > 0 {
		contexts = codes
	}
	multi := len(codes) > 1

	for _, code := range contexts {
		suffix := ""
		if multi {
			suffix = r.cfg.ClaimsLangSep + code
		}

		fields := make(map[string]string)
		found := false
		if len(subset) == 0 {
			joined, f := r.joinAttributes(attrs, norm, code, sep)
			found = f
			if strings.TrimSpace(joined) != "" {
				fields[r.cfg.FormattedKey+suffix] = joined
			}
		} else {
			for _, sub := range subset {
				joined, f := r.joinAttributes([]string{sub}, norm, code, sep)
				found = found || f
				if strings.TrimSpace(joined) != "" {
					fields[sub+suffix] = joined
				}
			}
		}
		if len(fields) == 0 {
			continue
		}

		name := claim
		if multi && found {
			name = claim + suffix
		}
		out[name] = fields
	}
}

// joinAttributes concatenates the values of attrs (each expanded through the
// schema) for the locale code. It reports whether any value matched code by
// language.
func (r *Resolver) joinAttributes(attrs []string, norm *IdentityRecord, code, sep string) (string, bool) {
	var parts []string
	found := false
	for _, attr := range attrs {
		for _, underlying := range r.expand(attr) {
			vals, ok := norm.Values(underlying)
			if !ok || len(vals) == 0 {
				continue
			}
			picked, matched := pickForLocale(vals, code)
			found = found || matched
			parts = append(parts, picked...)
		}
	}
	return strings.Join(parts, sep), found
}

func (r *Resolver) expand(attr string) []string {
	if attrs, err := r.schema.AttributesFor(attr); err == nil && len(attrs) > 0 {
		return attrs
	}
	return []string{attr}
}

// pickForLocale chooses the values of one attribute for a locale code. With
// no code the first value is used. When code is not available only a single
// untranslated value is used.
func pickForLocale(vals []LangValue, code string) ([]string, bool) {
	if code == "" {
		return []string{vals[0].Value}, false
	}
	if tag, ok := languageIndex(vals)[code]; ok {
		return valuesInLanguage(vals, tag), true
	}
	if len(vals) == 1 {
		return []string{vals[0].Value}, false
	}
	return nil, false
}
