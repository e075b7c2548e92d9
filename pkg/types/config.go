package types

// ProjectConfig is the parsed modelyard.yaml project configuration.
type ProjectConfig struct {
	Root          string           `yaml:"root,omitempty" json:"root,omitempty"`
	Dataset       string           `yaml:"dataset,omitempty" json:"dataset,omitempty"`
	Server        *ServerConfig    `yaml:"server,omitempty" json:"server,omitempty"`
	Tracking      *TrackingConfig  `yaml:"tracking,omitempty" json:"tracking,omitempty"`
	Model         *ModelDefaults   `yaml:"model,omitempty" json:"model,omitempty"`
	Refresher     *RefresherConfig `yaml:"refresher,omitempty" json:"refresher,omitempty"`
	Notifications []NotifyConfig   `yaml:"notifications,omitempty" json:"notifications,omitempty"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr           string `yaml:"addr,omitempty" json:"addr,omitempty"`
	APIKey         string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
	MaxRequestBody int64  `yaml:"maxRequestBody,omitempty" json:"maxRequestBody,omitempty"`
}

// TrackingConfig configures the experiment-tracking sink. URI selects the
// backend: empty or "file:<dir>" for the local file store, "http(s)://" for a
// remote tracking server. The MODELYARD_TRACKING_URI environment variable
// overrides the configured value.
type TrackingConfig struct {
	URI        string `yaml:"uri,omitempty" json:"uri,omitempty"`
	Experiment string `yaml:"experiment,omitempty" json:"experiment,omitempty"`
}

// ModelDefaults configures the model parameters used when a retrain request
// does not specify them.
type ModelDefaults struct {
	DefaultType   ModelType `yaml:"defaultType,omitempty" json:"defaultType,omitempty"`
	DefaultYValue float64   `yaml:"defaultYValue,omitempty" json:"defaultYValue,omitempty"`
}

// RefresherConfig configures the serving-state polling refresher.
type RefresherConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Interval string `yaml:"interval,omitempty" json:"interval,omitempty"`
}

// NotifyType identifies a promotion-notification sink.
type NotifyType string

// Supported notification sink types.
const (
	NotifyConsole NotifyType = "console"
	NotifyFile    NotifyType = "file"
	NotifyWebhook NotifyType = "webhook"
	NotifySNS     NotifyType = "sns"
	NotifyS3      NotifyType = "s3"
	NotifyPubSub  NotifyType = "pubsub"
)

// NotifyConfig configures a single promotion-notification sink. Which fields
// are required depends on the sink type.
type NotifyConfig struct {
	Type      NotifyType `yaml:"type" json:"type"`
	URL       string     `yaml:"url,omitempty" json:"url,omitempty"`
	Path      string     `yaml:"path,omitempty" json:"path,omitempty"`
	TopicARN  string     `yaml:"topicArn,omitempty" json:"topicArn,omitempty"`
	Bucket    string     `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Prefix    string     `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	ProjectID string     `yaml:"projectId,omitempty" json:"projectId,omitempty"`
	TopicID   string     `yaml:"topicId,omitempty" json:"topicId,omitempty"`
}

// PromotionEvent is the payload delivered to notification sinks after a model
// is promoted to production.
type PromotionEvent struct {
	Event      string           `json:"event"`
	Production ProductionRecord `json:"production"`
	OccurredAt string           `json:"occurred_at"`
}
