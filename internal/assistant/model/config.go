package model

// ================ Config ================
type GatewayConfig struct {
	Model       string  `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"GEMINI_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"GEMINI_TEMPERATURE" default:"0.3"`
	Apology     string  `envconfig:"GATEWAY_APOLOGY" default:"I'm sorry, there was an error processing your request. Please try again."`
	EmptyReply  string  `envconfig:"GATEWAY_EMPTY_REPLY" default:"I'm sorry, I couldn't generate a response. Please try again."`
}

// IndexConfig selects the similarity index. Backend is "redis" (RediSearch
// vector index, needs Redis Stack or Redis 8) or "memory".
type IndexConfig struct {
	Backend        string `envconfig:"INDEX_BACKEND" default:"redis"`
	Name           string `envconfig:"INDEX_NAME" default:"idx:employees"`
	KeyPrefix      string `envconfig:"INDEX_KEY_PREFIX" default:"employee:"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	DirectoryFile  string `envconfig:"EMPLOYEE_DIRECTORY_FILE" default:"employees.yaml"`
}

type ResolverConfig struct {
	TopK             int  `envconfig:"RESOLVER_TOP_K" default:"3"`
	StrictCandidates bool `envconfig:"RESOLVER_STRICT_CANDIDATES" default:"false"`
}

type AssistantConfig struct {
	CompanyName string `envconfig:"ASSISTANT_COMPANY_NAME" default:"Kanishka Software"`
	OpeningTime string `envconfig:"ASSISTANT_OPENING_TIME" default:"9:00 AM"`
	ClosingTime string `envconfig:"ASSISTANT_CLOSING_TIME" default:"4:30 PM"`
}

type SessionConfig struct {
	TTL                string `envconfig:"SESSION_TTL" default:"30m"`
	HistoryMaxMessages int    `envconfig:"SESSION_HISTORY_MAX_MESSAGES" default:"40"`
	TurnTimeout        string `envconfig:"TURN_TIMEOUT" default:"30s"`
}
