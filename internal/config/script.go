package config

import (
	"fmt"
	"os"

	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/pkg/validator"
	"gopkg.in/yaml.v3"
)

const defaultRequestTemplate = `You are a helpful assistant generating a cover letter for a job seeker.

Please write a polished, professional, and friendly cover letter using the following details:

Name: {{.Answers.name}}
Address: {{.Answers.address}}
City/State/Zip: {{.Answers.cityStateZip}}
Email: {{.Answers.email}}
Phone: {{.Answers.phone}}
Date: {{.Date}}

Job Title: {{.Answers.job}}
Company: {{.Answers.company}}
Location: (if included in job field): {{if not (contains .Answers.job " at ")}}{{.Answers.company}}{{end}}

Experience: {{.Answers.experience}}
Why it's a good fit: {{.Answers.fit}}
Tone: {{with trim .Answers.tone}}{{.}}{{else}}professional and friendly{{end}}

Make sure the final letter flows like a real human wrote it. Start with their contact info, then the greeting (e.g., "Dear Hiring Manager,"), followed by the body, and a closing paragraph with their name at the end.

Do not include placeholders like [Your Name] - fill everything in. Keep the formatting appropriate for a Microsoft Word-style letter.
`

// DefaultScript returns the built-in cover letter script
func DefaultScript() *entity.Script {
	return &entity.Script{
		Prompts: []entity.Prompt{
			{Key: "name", Text: "What is your full name?"},
			{Key: "address", Text: "What is your mailing address?"},
			{Key: "cityStateZip", Text: "City, State, and ZIP code?"},
			{Key: "email", Text: "What is your email address?"},
			{Key: "phone", Text: "What phone number should we include?"},
			{Key: "job", Text: "What job are you applying for, and where is it located?"},
			{Key: "experience", Text: "Can you tell me about your work experience?"},
			{Key: "company", Text: "What company is this job at?"},
			{Key: "fit", Text: "Why does this job sound like a good fit for you?"},
			{Key: "tone", Text: "What kind of tone would you like the letter to have? (e.g., formal, warm, confident)"},
		},
		RequestTemplate: defaultRequestTemplate,
		DateLayout:      "1/2/2006",
		Announcement:    "Looks like you're writing a cover letter! 📄 Here's your download link:",
		FailureNotice:   "Sorry, I couldn't write your cover letter this time. Please start a new session to try again.",
		Document: entity.DocumentKeys{
			NameKey:      "name",
			EmailKey:     "email",
			PhoneKey:     "phone",
			HeaderSuffix: " - Cover Letter",
			Closing:      "Sincerely,",
		},
	}
}

// LoadScript reads the script file. A missing file yields the built-in script.
func LoadScript(path string) (*entity.Script, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Warning: script file not found at %s, using default script\n", path)
		return DefaultScript(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("script file is empty: %s", path)
	}

	var script entity.Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script YAML: %w", err)
	}

	if err := validator.ValidateScript(&script); err != nil {
		return nil, err
	}

	fmt.Printf("Loaded %d prompts from %s\n", len(script.Prompts), path)
	return &script, nil
}
