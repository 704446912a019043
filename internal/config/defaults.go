package config

const (
	defaultConfigPath            = "~/.config/mediasig/config.toml"
	defaultLogDir                = "~/.local/share/mediasig/logs"
	defaultStateDir              = "~/.local/share/mediasig"
	defaultMaxVideoBytes         = 500 * 1024 * 1024
	defaultFrameIntervalSeconds  = 10
	defaultMaxFrames             = 100
	defaultFFmpeg                = "ffmpeg"
	defaultFFprobe               = "ffprobe"
	defaultPython                = "python3"
	defaultAudfprintScript       = "audfprint/audfprint.py"
	defaultTranscriptionProvider = ProviderWhisperX
	defaultWhisperXModel         = "base"
	defaultOpenAITranscribeModel = "whisper-1"
	defaultVADMethod             = "silero"
	defaultEmbeddingProvider     = ProviderOpenAI
	defaultEmbeddingModel        = "text-embedding-3-small"
	defaultEmbeddingTimeout      = 60
	defaultJobStore              = JobStoreMemory
	defaultSQLiteDSN             = ":memory:"
	defaultJobMaxConcurrent      = 2
	defaultAPIBind               = "127.0.0.1:7491"
	defaultMaxUploadBytes        = 2 * 1024 * 1024 * 1024
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	uploadSubdir                 = "mediasig-uploads"
)

// Provider and store names accepted in configuration.
const (
	ProviderWhisperX = "whisperx"
	ProviderOpenAI   = "openai"
	JobStoreMemory   = "memory"
	JobStoreSQLite   = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Limits: Limits{
			MaxVideoBytes: defaultMaxVideoBytes,
		},
		Video: Video{
			FrameIntervalSeconds: defaultFrameIntervalSeconds,
			MaxFrames:            defaultMaxFrames,
		},
		Tools: Tools{
			FFmpeg:          defaultFFmpeg,
			FFprobe:         defaultFFprobe,
			Python:          defaultPython,
			AudfprintScript: defaultAudfprintScript,
		},
		Transcription: Transcription{
			Provider:  defaultTranscriptionProvider,
			VADMethod: defaultVADMethod,
		},
		Embedding: Embedding{
			Provider:       defaultEmbeddingProvider,
			Model:          defaultEmbeddingModel,
			TimeoutSeconds: defaultEmbeddingTimeout,
		},
		Jobs: Jobs{
			Store:         defaultJobStore,
			SQLiteDSN:     defaultSQLiteDSN,
			MaxConcurrent: defaultJobMaxConcurrent,
		},
		API: API{
			Bind:           defaultAPIBind,
			AllowedOrigins: []string{"*"},
			MaxUploadBytes: defaultMaxUploadBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
