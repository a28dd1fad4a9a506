package cmd

import (
	"fmt"
	"time"
)

type Config struct {
	HTTPPort       string
	AllowedOrigins []string
	LogLevel       string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret string
	JWTIssuer string

	KafkaHosts             []string
	KafkaOrderChangedTopic string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	ShopName     string

	PaymentsBaseURL   string
	PaymentsSecretKey string

	FeedPollInterval time.Duration
	SweepSchedule    string
}

// DSN is the libpq connection string shared by gorm and the LISTEN connection.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
