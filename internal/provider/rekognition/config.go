package rekognition

// Config selects the AWS region. Credentials come from the default SDK chain
// (environment, shared config, instance role).
type Config struct {
	Region string
}

func DefaultConfig() Config {
	return Config{Region: "us-east-1"}
}
