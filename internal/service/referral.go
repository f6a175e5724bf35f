package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/set-night/localdeals/internal/config"
	"github.com/set-night/localdeals/internal/domain"
	"github.com/set-night/localdeals/internal/repository"
)

// Ambiguous characters (0/O, 1/I) are left out so codes survive being read aloud.
const referralCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateReferralCode() (string, error) {
	code := make([]byte, config.ReferralCodeSize)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referralCodeCharset))))
		if err != nil {
			return "", fmt.Errorf("random int: %w", err)
		}
		code[i] = referralCodeCharset[n.Int64()]
	}
	return string(code), nil
}

func generateUniqueReferralCode(ctx context.Context, q repository.Querier) (string, error) {
	for range 10 {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}
		_, err = q.GetUserRewardByReferralCode(ctx, code)
		if errors.Is(err, domain.ErrInvalidReferral) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to generate unique referral code after 10 attempts")
}
