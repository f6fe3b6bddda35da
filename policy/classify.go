package policy

import (
	"strings"
	"unicode"

	"github.com/viant/sqlparser"
)

// Statement kind labels produced by Classify.
const (
	Select        = "Select"
	Insert        = "Insert"
	Update        = "Update"
	Delete        = "Delete"
	Merge         = "Merge"
	Create        = "Create"
	Drop          = "Drop"
	Alter         = "Alter"
	Describe      = "Describe"
	Show          = "Show"
	Use           = "Use"
	TruncateTable = "TruncateTable"
	Grant         = "Grant"
	Revoke        = "Revoke"
	Commit        = "Commit"
	Rollback      = "Rollback"
	Transaction   = "Transaction"
	Set           = "Set"
	Copy          = "Copy"
	Command       = "Command"
	Unknown       = "Unknown"
)

var keywordKinds = map[string]string{
	"SELECT":   Select,
	"INSERT":   Insert,
	"UPDATE":   Update,
	"DELETE":   Delete,
	"MERGE":    Merge,
	"CREATE":   Create,
	"DROP":     Drop,
	"ALTER":    Alter,
	"DESCRIBE": Describe,
	"DESC":     Describe,
	"SHOW":     Show,
	"USE":      Use,
	"TRUNCATE": TruncateTable,
	"GRANT":    Grant,
	"REVOKE":   Revoke,
	"COMMIT":   Commit,
	"ROLLBACK": Rollback,
	"BEGIN":    Transaction,
	"START":    Transaction,
	"SET":      Set,
	"UNSET":    Set,
	"COPY":     Copy,
	"CALL":     Command,
	"EXECUTE":  Command,
	"EXPLAIN":  Command,
	"PUT":      Command,
	"GET":      Command,
	"LIST":     Command,
	"LS":       Command,
	"REMOVE":   Command,
	"RM":       Command,
	"UNDROP":   Command,
}

// Classifier labels SQL statements and memoizes the outcome.
type Classifier struct {
	cache *kindCache
}

// NewClassifier creates a classifier with an LRU of the given capacity.
func NewClassifier(capacity int) *Classifier {
	return &Classifier{cache: newKindCache(capacity)}
}

// Classify returns the statement kind, caching the result.
func (c *Classifier) Classify(statement string) string {
	if kind, ok := c.cache.Get(statement); ok {
		return kind
	}
	kind := Classify(statement)
	c.cache.Put(statement, kind)
	return kind
}

// Classify returns the kind label of a single SQL statement. The leading
// keyword decides the kind; a WITH prefix is resolved to the statement that
// follows its common table expressions. Empty text, more than one statement
// or an unrecognized keyword is labelled Unknown.
func Classify(statement string) string {
	SQL, ok := singleStatement(statement)
	if !ok {
		return Unknown
	}
	keyword := leadingKeyword(SQL)
	if keyword == "WITH" {
		if keyword = withTarget(SQL); keyword == "" {
			if _, err := sqlparser.ParseQuery(SQL); err == nil {
				return Select
			}
		}
	}
	if kind, ok := keywordKinds[keyword]; ok {
		return kind
	}
	return Unknown
}

// withTarget returns the keyword of the statement following the WITH list,
// or an empty string when the list is malformed.
func withTarget(SQL string) string {
	rest := strings.TrimLeftFunc(SQL, func(r rune) bool { return unicode.IsSpace(r) || r == '(' })
	rest = rest[len("WITH"):]
	if strings.EqualFold(leadingKeyword(rest), "RECURSIVE") {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)[len("RECURSIVE"):]
	}
	for {
		idx := strings.IndexByte(rest, '(')
		if idx == -1 {
			return ""
		}
		head := strings.ToUpper(rest[:idx])
		if !strings.Contains(head, " AS ") && !strings.HasSuffix(strings.TrimSpace(head), " AS") {
			// column list before AS
			end := closingParen(rest, idx)
			if end == -1 {
				return ""
			}
			rest = rest[end+1:]
			continue
		}
		end := closingParen(rest, idx)
		if end == -1 {
			return ""
		}
		rest = strings.TrimLeftFunc(rest[end+1:], unicode.IsSpace)
		if strings.HasPrefix(rest, ",") {
			rest = rest[1:]
			continue
		}
		return leadingKeyword(rest)
	}
}

// closingParen returns the index of the parenthesis closing the one at open,
// skipping quoted text.
func closingParen(text string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// singleStatement strips leading comments and trailing terminators. It
// returns false when another statement follows a semicolon.
func singleStatement(text string) (string, bool) {
	text = skipNoise(text)
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"':
			quote = c
		case strings.HasPrefix(text[i:], "--"):
			idx := strings.IndexByte(text[i:], '\n')
			if idx == -1 {
				i = len(text)
				continue
			}
			i += idx
		case strings.HasPrefix(text[i:], "/*"):
			idx := strings.Index(text[i+2:], "*/")
			if idx == -1 {
				i = len(text)
				continue
			}
			i += idx + 3
		case c == ';':
			if !onlyTerminators(text[i+1:]) {
				return "", false
			}
			return strings.TrimSpace(text[:i]), true
		}
	}
	return strings.TrimSpace(text), true
}

func onlyTerminators(text string) bool {
	for {
		text = skipNoise(text)
		if text == "" {
			return true
		}
		if text[0] != ';' {
			return false
		}
		text = text[1:]
	}
}

// skipNoise removes leading whitespace and comments.
func skipNoise(text string) string {
	for {
		trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
		switch {
		case strings.HasPrefix(trimmed, "--"):
			idx := strings.IndexByte(trimmed, '\n')
			if idx == -1 {
				return ""
			}
			text = trimmed[idx+1:]
		case strings.HasPrefix(trimmed, "/*"):
			idx := strings.Index(trimmed, "*/")
			if idx == -1 {
				return ""
			}
			text = trimmed[idx+2:]
		default:
			return trimmed
		}
	}
}

func leadingKeyword(SQL string) string {
	SQL = strings.TrimLeftFunc(SQL, func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	end := strings.IndexFunc(SQL, func(r rune) bool {
		return !(unicode.IsLetter(r) || r == '_')
	})
	if end == -1 {
		end = len(SQL)
	}
	return strings.ToUpper(SQL[:end])
}
