package config

const (
	defaultDataDir          = "~/.local/share/inkwell/data"
	defaultOutputDir        = "~/.local/share/inkwell/output"
	defaultLogDir           = "~/.local/share/inkwell/logs"
	defaultAccountsDir      = "~/.config/inkwell/accounts"
	defaultTrendsDir        = "~/.local/share/inkwell/trends"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultHotCount         = 5
	defaultRegularCount     = 7
	defaultSimilarity       = 0.82
	defaultTheme            = "snow-cold"
	defaultInlineCount      = 2
	defaultCoverResolution  = "1024:768"
	defaultInlineResolution = "1024:1024"
	defaultPollInterval     = 10
	defaultNotifyCooldown   = 60
	defaultTextGenBaseURL   = "https://api.moonshot.cn/v1"
	defaultTextGenModel     = "moonshot-v1-32k"
	defaultTextGenTimeout   = 120
	defaultImageGenTimeout  = 90
	defaultImageGenPoll     = 3
	defaultPublisherTimeout = 60
	defaultNotifyTimeout    = 15
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			OutputDir:   defaultOutputDir,
			LogDir:      defaultLogDir,
			AccountsDir: defaultAccountsDir,
			TrendsDir:   defaultTrendsDir,
		},
		Incubator: Incubator{
			HotCount:            defaultHotCount,
			RegularCount:        defaultRegularCount,
			SimilarityThreshold: defaultSimilarity,
		},
		Pipeline: Pipeline{
			DefaultTheme:     defaultTheme,
			InlineCount:      defaultInlineCount,
			CoverResolution:  defaultCoverResolution,
			InlineResolution: defaultInlineResolution,
		},
		Dispatcher: Dispatcher{
			PollInterval:   defaultPollInterval,
			NotifyCooldown: defaultNotifyCooldown,
		},
		TextGen: TextGen{
			BaseURL:        defaultTextGenBaseURL,
			Model:          defaultTextGenModel,
			Temperature:    0.7,
			MaxTokens:      3000,
			TimeoutSeconds: defaultTextGenTimeout,
		},
		ImageGen: ImageGen{
			TimeoutSeconds: defaultImageGenTimeout,
			PollSeconds:    defaultImageGenPoll,
		},
		Publisher: Publisher{
			TimeoutSeconds: defaultPublisherTimeout,
		},
		Notify: Notify{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
