package s3client

import "time"

type Option func(*S3Client)

func ConnAttempts(attempts int) Option {
	return func(s *S3Client) {
		s.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(s *S3Client) {
		s.connTimeout = timeout
	}
}

func Region(region string) Option {
	return func(s *S3Client) {
		s.region = region
	}
}

func UsePathStyle(use bool) Option {
	return func(s *S3Client) {
		s.usePathStyle = use
	}
}
