package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:              "info",
			MaxConcurrentMessages: 5,
			FetchTimeoutSeconds:   10,
		},
		Channels: ChannelsConfig{
			Telegram: TelegramConfig{
				Enabled:   false,
				ParseMode: "",
			},
			CLI: CLIConfig{
				Enabled: true,
			},
		},
		Providers: ProvidersConfig{
			CatAPI: CatAPIConfig{
				APIBase: "https://api.thecatapi.com/v1",
			},
			NASA: NASAConfig{
				APIBase: "https://api.nasa.gov",
				APIKey:  "DEMO_KEY",
			},
			SpaceX: SpaceXConfig{
				APIBase: "https://api.spacexdata.com/v4",
			},
			Petstore: PetstoreConfig{
				APIBase: "https://petstore.swagger.io/v2",
			},
		},
		Menu: MenuConfig{
			Path: "",
		},
		Journal: JournalConfig{
			Enabled:       true,
			DBPath:        "~/.multibot/journal.db",
			RetentionDays: 30,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9091",
		},
	}
}
