package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Formatter renders values as display text. Only datetimes depend on the
// locale; everything else formats the same way everywhere.
type Formatter struct {
	Locale monday.Locale
	layout string
}

// DefaultFormatter formats for en_US.
var DefaultFormatter = NewFormatter(monday.LocaleEnUS)

// NewFormatter returns a Formatter with the medium layout for locale.
func NewFormatter(locale monday.Locale) Formatter {
	return Formatter{Locale: locale, layout: mediumLayout(locale)}
}

// FormatterForTag parses a BCP 47 tag such as "en-US" or "de_DE".
// Unknown or malformed tags fall back to en_US.
func FormatterForTag(tag string) Formatter {
	return NewFormatter(LocaleForTag(tag))
}

var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"de_at": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"it_it": monday.LocaleItIT,
	"nl":    monday.LocaleNlNL,
	"nl_nl": monday.LocaleNlNL,
	"pl":    monday.LocalePlPL,
	"pl_pl": monday.LocalePlPL,
	"pt":    monday.LocalePtPT,
	"pt_pt": monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"ru":    monday.LocaleRuRU,
	"ru_ru": monday.LocaleRuRU,
	"ja":    monday.LocaleJaJP,
	"ja_jp": monday.LocaleJaJP,
}

// LocaleForTag maps a BCP 47 tag to a monday locale.
func LocaleForTag(tag string) monday.Locale {
	t, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return monday.LocaleEnUS
	}
	base, _ := t.Base()
	lang := strings.ToLower(base.String())
	if region, conf := t.Region(); conf == language.Exact {
		if loc, ok := mondayLocales[lang+"_"+strings.ToLower(region.String())]; ok {
			return loc
		}
	}
	if loc, ok := mondayLocales[lang]; ok {
		return loc
	}
	return monday.LocaleEnUS
}

// mediumLayout is the medium date-time pattern for locale, in Go layout
// form. monday translates month and day names afterwards.
func mediumLayout(locale monday.Locale) string {
	switch locale {
	case monday.LocaleEnUS:
		return "Jan 2, 2006, 3:04:05 PM"
	case monday.LocaleEnGB:
		return "2 Jan 2006, 15:04:05"
	case monday.LocaleDeDE, monday.LocaleRuRU:
		return "02.01.2006, 15:04:05"
	case monday.LocaleFrFR, monday.LocaleFrCA:
		return "2 Jan 2006 15:04:05"
	case monday.LocaleNlNL:
		return "2 Jan 2006 15:04:05"
	case monday.LocaleJaJP:
		return "2006/01/02 15:04:05"
	default:
		return "2 Jan 2006, 15:04:05"
	}
}

// FormatDateTime renders t with the formatter's locale.
func (f Formatter) FormatDateTime(t time.Time) string {
	layout := f.layout
	if layout == "" {
		layout = mediumLayout(f.Locale)
	}
	return monday.Format(t, layout, f.Locale)
}

// Display returns the display text of v.
func (f Formatter) Display(v Value) string {
	switch x := v.(type) {
	case DateTime:
		return f.FormatDateTime(x.Time)
	case *Tuple:
		return x.display(f)
	default:
		return v.String()
	}
}

// FormatFloat renders f in plain decimal form when 1e-3 <= |f| < 1e7
// (or f is zero) and as "1.5E-5" otherwise. Digits are the shortest that
// round-trip and the mantissa always keeps a decimal point.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if abs := math.Abs(f); f == 0 || (abs >= 1e-3 && abs < 1e7) {
		return withPoint(strconv.FormatFloat(f, 'f', -1, 64))
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'E', -1, 64), "E")
	e, _ := strconv.Atoi(exp)
	return withPoint(mant) + "E" + strconv.Itoa(e)
}

func withPoint(s string) string {
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	return s
}

// FormatDuration renders d as "4d 3h 2m 1s". Units from days down to
// minutes appear only when d reaches them and are non-zero; seconds are
// always present. Sub-second precision is dropped.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	var b strings.Builder
	if secs >= 86400 {
		fmt.Fprintf(&b, "%dd ", secs/86400)
		secs %= 86400
	}
	if secs >= 3600 {
		fmt.Fprintf(&b, "%dh ", secs/3600)
		secs %= 3600
	}
	if secs >= 60 {
		fmt.Fprintf(&b, "%dm ", secs/60)
		secs %= 60
	}
	fmt.Fprintf(&b, "%ds", secs)
	return b.String()
}

// DecodeStringLiteral strips the surrounding quotes of a raw string
// lexeme and substitutes \b \t \n \f \r \" \' and \\. Other backslash
// sequences are kept as written.
func DecodeStringLiteral(raw string) string {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		raw = raw[1 : len(raw)-1]
	}
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 == len(raw) {
			b.WriteByte(c)
			continue
		}
		switch raw[i+1] {
		case 'b':
			b.WriteByte('\b')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String()
}
