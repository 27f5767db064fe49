package core

import "time"

// Classification is the coarse kind of a file found in the managed
// configuration directory, spec §3.
type Classification string

const (
	ClassActive  Classification = "active"
	ClassSample  Classification = "sample"
	ClassBackup  Classification = "backup"
	ClassOther   Classification = "other"
)

// BaseType is the portion of an active config's filename recovered between
// its last two dots.
type BaseType string

const (
	BaseSubdomain BaseType = "subdomain"
	BaseSubfolder BaseType = "subfolder"
)

// AuthMethod enumerates the supported gateway auth integrations.
type AuthMethod string

const (
	AuthNone      AuthMethod = "none"
	AuthBasic     AuthMethod = "basic"
	AuthLDAP      AuthMethod = "ldap"
	AuthAuthelia  AuthMethod = "authelia"
	AuthAuthentik AuthMethod = "authentik"
	AuthTinyAuth  AuthMethod = "tinyauth"
)

// UpstreamProto is the scheme the rendered config proxies to.
type UpstreamProto string

const (
	ProtoHTTP  UpstreamProto = "http"
	ProtoHTTPS UpstreamProto = "https"
)

// ListFilter selects which classes of file ConfigOperations.List returns.
type ListFilter string

const (
	FilterAll     ListFilter = "all"
	FilterActive  ListFilter = "active"
	FilterSamples ListFilter = "samples"
)

// UpdateKind selects the narrow transform a field-update operation applies.
type UpdateKind string

const (
	UpdatePort     UpdateKind = "port"
	UpdateUpstream UpdateKind = "upstream"
	UpdateApp      UpdateKind = "app"
	UpdateAddMCP   UpdateKind = "add_mcp"
)

// ConfigFile describes one entry in the managed configuration directory.
type ConfigFile struct {
	Name       string
	Path       string
	Size       int64
	ModTime    time.Time
	Class      Classification
}

// Backup describes a timestamped copy of a prior active-config version.
// Name grammar: ORIGINAL ".backup." YYYYMMDD_HHMMSS_mmm (UTC).
type Backup struct {
	Name         string
	OriginalName string
	Path         string
	Timestamp    time.Time
	Size         int64
}

// ConfigRequest is the input to ConfigOperations.Create.
type ConfigRequest struct {
	ConfigName    string `validate:"required"`
	ServerName    string `validate:"required,max=253"`
	UpstreamApp   string `validate:"required,max=100"`
	UpstreamPort  int    `validate:"required,min=1,max=65535"`
	UpstreamProto UpstreamProto
	MCPEnabled    bool
	AuthMethod    AuthMethod
	EnableQUIC    bool
}

// EditRequest is the input to ConfigOperations.Overwrite.
type EditRequest struct {
	ConfigName string `validate:"required"`
	Content    string `validate:"required"`
	Backup     bool
}

// UpdateRequest is the input to ConfigOperations.UpdateField.
type UpdateRequest struct {
	ConfigName string `validate:"required"`
	Kind       UpdateKind
	Value      string
	Backup     bool
}

// RemoveRequest is the input to ConfigOperations.Remove.
type RemoveRequest struct {
	ConfigName string `validate:"required"`
	Backup     bool
}

// HealthRequest is the input to HealthMonitor.Probe.
type HealthRequest struct {
	Domain          string `validate:"required"`
	TimeoutSeconds  int    `validate:"required,min=1,max=300"`
	FollowRedirects bool
}

// HealthResult is the outcome of a health probe.
type HealthResult struct {
	Success        bool
	URL            string
	StatusCode     int
	ResponseTimeMS int64
	Error          string
	RedirectTail   string
	Attempts       []string
}

// LogCategory enumerates the recognized log kinds for LogsRequest.
type LogCategory string

const (
	LogNginxError LogCategory = "nginx-error"
	LogNginxAccess LogCategory = "nginx-access"
	LogFail2Ban   LogCategory = "fail2ban"
	LogLetsEncrypt LogCategory = "letsencrypt"
	LogRenewal    LogCategory = "renewal"
)

// LogsRequest is the input to HealthMonitor.Logs.
type LogsRequest struct {
	Kind  LogCategory `validate:"required"`
	Lines int         `validate:"required,min=1,max=1000"`
	Since int64       // optional byte offset; HealthMonitor.Logs does not read it and always tails from the end of the file
}

// Defaults is the snapshot returned by Orchestrator.Defaults.
type Defaults struct {
	AuthMethod      AuthMethod `yaml:"auth_method"`
	ConfigBase      BaseType   `yaml:"config_base"`
	QUICEnabled     bool       `yaml:"quic_enabled"`
	BackupRetention int        `yaml:"backup_retention_days"`
	HealthTimeoutS  int        `yaml:"health_timeout_seconds"`
	MaxFileBytes    int64      `yaml:"max_file_bytes"`
	TemplateNames   []string   `yaml:"template_names"`
}
