package entry

const DefaultLanguage = "plaintext"

// CodeEntry - фрагмент кода с подсветкой. Язык - свободная строка.
type CodeEntry struct {
	Base[*CodeEntry]

	language    string
	maxHeight   *int
	lineNumbers bool
}

func Code(name string) *CodeEntry {
	e := &CodeEntry{language: DefaultLanguage, lineNumbers: true}
	e.setup(e, KindCode, name)
	e.env.copyable = true
	return e
}

func (e *CodeEntry) Language(lang string) *CodeEntry {
	e.language = lang
	return e
}

func (e *CodeEntry) GetLanguage() string { return e.language }

func (e *CodeEntry) MaxHeight(px int) *CodeEntry {
	e.maxHeight = &px
	return e
}

func (e *CodeEntry) LineNumbers(cond bool) *CodeEntry {
	e.lineNumbers = cond
	return e
}

func (e *CodeEntry) JSON() *CodeEntry       { return e.Language("json") }
func (e *CodeEntry) PHP() *CodeEntry        { return e.Language("php") }
func (e *CodeEntry) JavaScript() *CodeEntry { return e.Language("javascript") }
func (e *CodeEntry) TypeScript() *CodeEntry { return e.Language("typescript") }
func (e *CodeEntry) Python() *CodeEntry     { return e.Language("python") }
func (e *CodeEntry) SQL() *CodeEntry        { return e.Language("sql") }
func (e *CodeEntry) YAML() *CodeEntry       { return e.Language("yaml") }
func (e *CodeEntry) HTML() *CodeEntry       { return e.Language("html") }
func (e *CodeEntry) CSS() *CodeEntry        { return e.Language("css") }
func (e *CodeEntry) Go() *CodeEntry         { return e.Language("go") }

func (e *CodeEntry) ToProps() (*Props, error) {
	return e.baseProps().Merge(NewProps().
		Set("language", e.language).
		Set("maxHeight", intOrNil(e.maxHeight)).
		Set("lineNumbers", e.lineNumbers)), nil
}
