package cfg

type Cfg struct {
	// Audit definition
	ConfigFile string

	// HTTP report surface
	Port string

	// Feed cache
	CacheBackend string
	CachePath    string
	RedisAddr    string

	// One-shot mode
	Once       bool
	ClearCache bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
