package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Data.Path == "" {
		cfg.Data.Path = "./school_data.csv"
	}
	if cfg.Data.Schema == "" {
		cfg.Data.Schema = "auto"
	}
	if cfg.Data.Table == "" {
		cfg.Data.Table = "schools"
	}
	if cfg.Data.Reload == "" {
		cfg.Data.Reload = ReloadStatic
	}
	if cfg.Search.DisplayLimit == 0 {
		cfg.Search.DisplayLimit = 50
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 200
	}
	if cfg.Search.MaxLimit < cfg.Search.DisplayLimit {
		cfg.Search.MaxLimit = cfg.Search.DisplayLimit
	}
	if cfg.Search.SuggestionCount == 0 {
		cfg.Search.SuggestionCount = 5
	}
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = 256
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/schools.db"
	}
}
