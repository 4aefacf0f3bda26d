package entity

// Script is the fixed conversation definition: questions, request template
// and the wording used around the generated document
type Script struct {
	Prompts         []Prompt     `yaml:"prompts"`
	RequestTemplate string       `yaml:"request_template"`
	DateLayout      string       `yaml:"date_layout"`
	Announcement    string       `yaml:"announcement"`
	FailureNotice   string       `yaml:"failure_notice"`
	Document        DocumentKeys `yaml:"document"`
}

// DocumentKeys tells which answers feed the document header, contact block and signature
type DocumentKeys struct {
	NameKey      string `yaml:"name_key"`
	EmailKey     string `yaml:"email_key"`
	PhoneKey     string `yaml:"phone_key"`
	HeaderSuffix string `yaml:"header_suffix"`
	Closing      string `yaml:"closing"`
}

// Keys returns prompt keys in script order
func (s *Script) Keys() []string {
	keys := make([]string, 0, len(s.Prompts))
	for _, p := range s.Prompts {
		keys = append(keys, p.Key)
	}
	return keys
}
