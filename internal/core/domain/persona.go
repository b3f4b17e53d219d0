package domain

import "time"

// Persona is a reusable AI character definition: a system prompt plus
// generation preferences.
type Persona struct {
	// ID is the database row identifier. Zero until persisted.
	ID int64

	// Name is the unique persona name.
	Name string

	// Description is an optional summary shown in pickers.
	Description string

	// SystemPrompt is injected at the start of conversations using this
	// persona.
	SystemPrompt string

	// AvatarPath is an optional local image path.
	AvatarPath string

	// Settings holds generation preferences. Nil for defaults.
	Settings *PersonaSettings

	// Active personas appear in listings; inactive ones are retired
	// without losing conversation history that references them.
	Active bool

	// CreatedAt is when the persona was created.
	CreatedAt time.Time

	// UpdatedAt is when the persona was last modified.
	UpdatedAt time.Time
}

// PersonaSettings are per-persona generation preferences.
type PersonaSettings struct {
	PreferredModel   string   `json:"preferred_model,omitempty"`
	Temperature      float64  `json:"temperature,omitempty"`
	MaxTokens        int      `json:"max_tokens,omitempty"`
	ResponseStyle    string   `json:"response_style,omitempty"`
	ExpertiseDomains []string `json:"expertise_domains,omitempty"`
}

// NewPersona creates an unpersisted, active persona.
func NewPersona(name, description, systemPrompt string) Persona {
	now := time.Now().UTC()
	return Persona{
		Name:         name,
		Description:  description,
		SystemPrompt: systemPrompt,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// PersonaUpdate describes a partial persona update. Nil fields are left
// unchanged.
type PersonaUpdate struct {
	Name         *string
	Description  *string
	SystemPrompt *string
	Settings     *PersonaSettings
	Active       *bool
}

// Empty reports whether the update changes nothing.
func (u PersonaUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.SystemPrompt == nil &&
		u.Settings == nil && u.Active == nil
}
