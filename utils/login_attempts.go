package utils

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ValidateLoginAttempts counts failed logins per account in Redis and
// rejects after 5 within an hour. A nil client disables the throttle.
func ValidateLoginAttempts(email string, client *redis.Client) error {
	if client == nil {
		return nil
	}

	key := "login_attempts:" + email
	attempts, err := client.Incr(context.Background(), key).Result()
	if err != nil {
		return err
	}

	if attempts == 1 {
		client.Expire(context.Background(), key, 1*time.Hour)
	}

	if attempts > 5 {
		return errors.New("too many login attempts")
	}
	return nil
}

// ResetLoginAttempts clears the counter after a successful login.
func ResetLoginAttempts(email string, client *redis.Client) {
	if client == nil {
		return
	}
	client.Del(context.Background(), "login_attempts:"+email)
}
