package config

type Config interface {
	EnvConfig
	AuthConfig
	StoreConfig
	CorsConfig
}

type mainConfig struct {
	EnvVars
	Auth
	Store
	Cors
}

func New() Config {
	return mainConfig{}
}
