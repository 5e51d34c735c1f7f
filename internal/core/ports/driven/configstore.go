package driven

// ConfigStore is a flat key space of settings such as "retrieval.top_k".
// Typed getters return the zero value for missing or mistyped keys.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	// GetFloat also accepts integers.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set changes a key and persists the store.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is where the store persists. In-memory stores return ":memory:".
	Path() string
}
