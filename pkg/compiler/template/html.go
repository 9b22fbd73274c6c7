package template

// voidElements have no content and no closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoid reports whether name is a void element with no closing tag.
func IsVoid(name string) bool {
	return voidElements[name]
}

// pClosers are the elements whose start tag implicitly closes an open <p>.
var pClosers = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "dl": true, "fieldset": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "main": true, "menu": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"ul": true,
}

// closingTagOmitted implements the HTML optional-closing-tag rules: whether
// an open <current> is implicitly closed by a following <next>.
func closingTagOmitted(current, next string) bool {
	switch current {
	case "li":
		return next == "li"
	case "dt", "dd":
		return next == "dt" || next == "dd"
	case "p":
		return pClosers[next]
	case "rt", "rp":
		return next == "rt" || next == "rp"
	case "optgroup":
		return next == "optgroup"
	case "option":
		return next == "option" || next == "optgroup"
	case "thead", "tbody":
		return next == "tbody" || next == "tfoot"
	case "tr":
		return next == "tr"
	case "td", "th":
		return next == "td" || next == "th" || next == "tr"
	}
	return false
}
