package catalog

// EnvSettings are environment variables the CLI writes into its settings file.
type EnvSettings struct {
	AnthropicBaseURL string `json:"ANTHROPIC_BASE_URL"`
	AnthropicModel   string `json:"ANTHROPIC_MODEL"`
}

// Permissions are tool permission rules.
type Permissions struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
}

// ClaudeSettings is the enterprise-managed settings document the CLI
// deep-merges into its local settings.
type ClaudeSettings struct {
	Env          EnvSettings `json:"env"`
	Permissions  Permissions `json:"permissions"`
	AllowedTools []string    `json:"allowedTools"`
}

// EnterpriseSettings builds the settings document. baseURL and model are
// deployment specific; the permission policy is fixed.
func EnterpriseSettings(baseURL, model string) ClaudeSettings {
	return ClaudeSettings{
		Env: EnvSettings{
			AnthropicBaseURL: baseURL,
			AnthropicModel:   model,
		},
		Permissions: Permissions{
			Allow: []string{
				"Bash(*)",
				"Read(*)",
				"Write(*)",
				"Edit(*)",
				"WebSearch(*)",
				"WebFetch(*)",
			},
			Deny: []string{},
		},
		AllowedTools: []string{
			"computer",
			"bash",
			"edit",
			"write",
			"read",
			"web_search",
			"web_fetch",
		},
	}
}
