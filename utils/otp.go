package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// In-memory OTP store. Process-local and non-persistent: codes are lost on
// restart and not shared across instances.

type otpEntry struct {
	Code      string
	ExpiresAt time.Time
	Attempts  int
}

var (
	otpStore = make(map[string]otpEntry)
	otpMutex sync.Mutex
)

const (
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 5
)

// IssueOTP generates a 6 digit code for the email, replacing any previous one.
func IssueOTP(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	otpMutex.Lock()
	defer otpMutex.Unlock()
	otpStore[email] = otpEntry{
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	return code, nil
}

// VerifyOTP consumes the code on success. Failed attempts are counted and the
// entry is dropped after too many.
func VerifyOTP(email, code string) error {
	otpMutex.Lock()
	defer otpMutex.Unlock()

	entry, exists := otpStore[email]
	if !exists {
		return errors.New("no OTP issued for this email")
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(otpStore, email)
		return errors.New("OTP expired")
	}
	if entry.Code != code {
		entry.Attempts++
		if entry.Attempts >= otpMaxAttempts {
			delete(otpStore, email)
			return errors.New("too many failed attempts, request a new OTP")
		}
		otpStore[email] = entry
		return errors.New("incorrect OTP")
	}

	delete(otpStore, email)
	return nil
}

// StartOTPCleanup sweeps expired entries periodically.
func StartOTPCleanup() {
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			otpMutex.Lock()
			now := time.Now()
			for email, entry := range otpStore {
				if now.After(entry.ExpiresAt) {
					delete(otpStore, email)
				}
			}
			otpMutex.Unlock()
		}
	}()
}
