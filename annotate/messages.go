package annotate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/tsawler/docfmt/rules"
)

// supported lists the comment languages. The first is the fallback.
var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

// Message keys. The English text is the key itself.
const (
	msgViolation    = "[%s] %s: expected %s, found %s"
	msgHeadingStyle = "heading %d style"
	msgOneOf        = "one of %s"
	msgBetween      = "from %s to %s"
	msgAtLeast      = "at least %s"
	msgAtMost       = "at most %s"
	msgPoints       = "%s pt"
	msgCentimeters  = "%s cm"
	msgTimes        = "%s lines"
	msgNotStated    = "not stated"
)

var labels = map[rules.Category]string{
	rules.BodyFont:        "body font",
	rules.BodyFontSize:    "body font size",
	rules.HeadingFont:     "heading font",
	rules.HeadingFontSize: "heading font size",
	rules.Indentation:     "first-line indent",
	rules.LineSpacing:     "line spacing",
	rules.Alignment:       "alignment",
	rules.MarginTop:       "top margin",
	rules.MarginBottom:    "bottom margin",
	rules.MarginLeft:      "left margin",
	rules.MarginRight:     "right margin",
}

var severities = map[rules.Severity]string{
	rules.SeverityError:   "error",
	rules.SeverityWarning: "warning",
	rules.SeverityInfo:    "note",
}

var alignments = map[string]string{
	"left":       "left",
	"right":      "right",
	"center":     "center",
	"both":       "justified",
	"distribute": "distributed",
}

var russian = map[string]string{
	msgViolation:    "[%s] %s: ожидается %s, найдено %s",
	msgHeadingStyle: "стиль заголовка %d уровня",
	msgOneOf:        "одно из: %s",
	msgBetween:      "от %s до %s",
	msgAtLeast:      "не менее %s",
	msgAtMost:       "не более %s",
	msgPoints:       "%s пт",
	msgCentimeters:  "%s см",
	msgTimes:        "%s строки",
	msgNotStated:    "не задано",

	"body font":         "шрифт основного текста",
	"body font size":    "размер шрифта основного текста",
	"heading font":      "шрифт заголовков",
	"heading font size": "размер шрифта заголовков",
	"first-line indent": "абзацный отступ",
	"line spacing":      "междустрочный интервал",
	"alignment":         "выравнивание",
	"top margin":        "верхнее поле",
	"bottom margin":     "нижнее поле",
	"left margin":       "левое поле",
	"right margin":      "правое поле",

	"error":   "ошибка",
	"warning": "предупреждение",
	"note":    "замечание",

	"left":        "по левому краю",
	"right":       "по правому краю",
	"center":      "по центру",
	"justified":   "по ширине",
	"distributed": "распределённое",
}

var messages = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range russian {
		if err := b.SetString(language.Russian, key, text); err != nil {
			panic(err)
		}
	}
	return b
}

// Printer returns a printer for the closest supported language to lang.
// Unknown or malformed tags get English.
func Printer(lang string) *message.Printer {
	return message.NewPrinter(Match(lang), message.Catalog(messages))
}

// Match returns the supported language closest to lang.
func Match(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return supported[0]
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}
