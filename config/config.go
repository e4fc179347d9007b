package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"readTimeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idleTimeout"`
}

type PathsConfig struct {
	Template   string `yaml:"template" json:"template"`
	OutputDir  string `yaml:"output_dir" json:"outputDir"`
	UploadRoot string `yaml:"upload_root" json:"uploadRoot"`
}

type EngineConfig struct {
	LetterWidth         float64  `yaml:"letter_width" json:"letterWidth"`
	GalleryWidth        float64  `yaml:"gallery_width" json:"galleryWidth"`
	AttendanceWidth     float64  `yaml:"attendance_width" json:"attendanceWidth"`
	LetterPageBreak     bool     `yaml:"letter_page_break" json:"letterPageBreak"`
	BlankMissingMarkers bool     `yaml:"blank_missing_markers" json:"blankMissingMarkers"`
	PSO1Text            string   `yaml:"pso1_text" json:"pso1Text"`
	PSO2Text            string   `yaml:"pso2_text" json:"pso2Text"`
	POHeadings          []string `yaml:"po_headings" json:"poHeadings"`
	BatchConcurrency    int      `yaml:"batch_concurrency" json:"batchConcurrency"`
}

// ArchiveConfig enables uploads of finished reports to MinIO or S3. An
// empty endpoint disables archiving.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"accessKey"`
	SecretKey string `yaml:"secret_key" json:"-"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	UseSSL    bool   `yaml:"use_ssl" json:"useSSL"`
}

// NotifyConfig enables report.generated messages. An empty URL disables it.
type NotifyConfig struct {
	URL      string `yaml:"url" json:"-"`
	Exchange string `yaml:"exchange" json:"exchange"`
}

type Config struct {
	Server   ServerConfig  `yaml:"server" json:"server"`
	Database string        `yaml:"database" json:"database"`
	Paths    PathsConfig   `yaml:"paths" json:"paths"`
	Engine   EngineConfig  `yaml:"engine" json:"engine"`
	Archive  ArchiveConfig `yaml:"archive" json:"archive"`
	Notify   NotifyConfig  `yaml:"notify" json:"notify"`
	LogLevel string        `yaml:"log_level" json:"logLevel"`
}

var (
	cfg Config
	mu  sync.RWMutex

	configFilePath = "./eventreport.yaml"
)

// SetPath changes the file LoadConfig and SaveConfig use.
func SetPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	configFilePath = path
}

// LoadConfig reads the config file, applies EVENTREPORT_* overrides and
// fills defaults. A missing file yields the defaults.
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	var tempCfg Config
	file, err := os.ReadFile(configFilePath)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	if err == nil {
		if err := yaml.Unmarshal(file, &tempCfg); err != nil {
			return Config{}, err
		}
	}

	tempCfg.applyEnvOverrides()
	tempCfg.applyDefaults()
	cfg = tempCfg
	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	// Secrets are not sent to the browser; keep the stored ones.
	if newCfg.Archive.SecretKey == "" {
		newCfg.Archive.SecretKey = cfg.Archive.SecretKey
	}
	if newCfg.Notify.URL == "" {
		newCfg.Notify.URL = cfg.Notify.URL
	}
	newCfg.applyDefaults()

	file, err := yaml.Marshal(newCfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configFilePath, file, 0600); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Database == "" {
		c.Database = "./eventreport.db"
	}
	if c.Paths.Template == "" {
		c.Paths.Template = "word_templates/college_letterhead.docx"
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = "generated_reports"
	}
	if c.Paths.UploadRoot == "" {
		c.Paths.UploadRoot = "."
	}
	if c.Engine.LetterWidth == 0 {
		c.Engine.LetterWidth = 6
	}
	if c.Engine.GalleryWidth == 0 {
		c.Engine.GalleryWidth = 5
	}
	if c.Engine.AttendanceWidth == 0 {
		c.Engine.AttendanceWidth = 8
	}
	if c.Engine.BatchConcurrency <= 0 {
		c.Engine.BatchConcurrency = 4
	}
	if c.Archive.Bucket == "" {
		c.Archive.Bucket = "event-reports"
	}
	if c.Notify.Exchange == "" {
		c.Notify.Exchange = "eventreport.events"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) applyEnvOverrides() {
	str := func(key string, dst *string) {
		if v := os.Getenv("EVENTREPORT_" + key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := os.Getenv("EVENTREPORT_" + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str("ADDR", &c.Server.Addr)
	str("DATABASE", &c.Database)
	str("TEMPLATE", &c.Paths.Template)
	str("OUTPUT_DIR", &c.Paths.OutputDir)
	str("UPLOAD_ROOT", &c.Paths.UploadRoot)
	boolean("BLANK_MISSING_MARKERS", &c.Engine.BlankMissingMarkers)
	boolean("LETTER_PAGE_BREAK", &c.Engine.LetterPageBreak)
	str("MINIO_ENDPOINT", &c.Archive.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Archive.AccessKey)
	str("MINIO_SECRET_KEY", &c.Archive.SecretKey)
	str("MINIO_BUCKET", &c.Archive.Bucket)
	boolean("MINIO_USE_SSL", &c.Archive.UseSSL)
	str("RABBITMQ_URL", &c.Notify.URL)
	str("RABBITMQ_EXCHANGE", &c.Notify.Exchange)
	str("LOG_LEVEL", &c.LogLevel)
}
