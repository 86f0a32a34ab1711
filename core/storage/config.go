package storage

// Connection types accepted in Config.Type.
const (
	TypeS3    = "s3"
	TypeSFTP  = "sftp"
	TypeLocal = "local"
)

// Config holds configuration for one raw byte source.
type Config struct {
	// Type selects the source implementation (s3, sftp, local).
	Type string `mapstructure:"type" default:"s3"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket holding provider exports.
	Bucket string `mapstructure:"bucket" default:"positions"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// Host is the SFTP server address (host:port).
	Host string `mapstructure:"host" default:""`
	// User is the SFTP user name.
	User string `mapstructure:"user" default:""`
	// Password is the SFTP password.
	Password string `mapstructure:"password" default:""`
	// HostKey is the SFTP server public key in authorized_keys format. Empty skips verification.
	HostKey string `mapstructure:"host_key" default:""`
	// Root is the base directory for local and SFTP sources.
	Root string `mapstructure:"root" default:""`
}
