package scoring

import (
	"testing"

	"github.com/mcoot/codebreaker/internal/model"
	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

func (s *ServiceSuite) TestEvaluate() {
	tests := []struct {
		secret, guess string
		want          model.GuessResult
	}{
		{"1234", "1243", model.GuessResult{CorrectPositions: 2, CorrectDigits: 2}},
		{"1234", "1234", model.GuessResult{CorrectPositions: 4, CorrectDigits: 0}},
		{"1234", "5678", model.GuessResult{}},
		{"1234", "4321", model.GuessResult{CorrectPositions: 0, CorrectDigits: 4}},
		{"1234", "1567", model.GuessResult{CorrectPositions: 1, CorrectDigits: 0}},
		{"1234", "5167", model.GuessResult{CorrectPositions: 0, CorrectDigits: 1}},
		{"0", "0", model.GuessResult{CorrectPositions: 1}},
		{"9876543210", "0123456789", model.GuessResult{CorrectDigits: 10}},
	}

	for _, tt := range tests {
		s.Run(tt.secret+"/"+tt.guess, func() {
			s.Equal(tt.want, s.service.Evaluate(tt.secret, tt.guess))
		})
	}
}

func (s *ServiceSuite) TestEvaluateSecretAgainstItself() {
	for _, secret := range []string{"0", "12", "907", "1234", "56789", "0123456789"} {
		res := s.service.Evaluate(secret, secret)
		s.Equal(len(secret), res.CorrectPositions)
		s.Equal(0, res.CorrectDigits)
	}
}

func (s *ServiceSuite) TestEvaluateNeverExceedsCodeLength() {
	secret := "3917"
	for a := 0; a < 10; a++ {
		for b := 0; b < 10; b++ {
			if a == b {
				continue
			}
			guess := string([]byte{byte('0' + a), byte('0' + b), '5', '8'})
			if guess[2] == guess[0] || guess[2] == guess[1] || guess[3] == guess[0] || guess[3] == guess[1] {
				continue
			}
			res := s.service.Evaluate(secret, guess)
			s.LessOrEqual(res.CorrectPositions+res.CorrectDigits, len(secret))
			s.GreaterOrEqual(res.CorrectDigits, 0)
			s.Equal(res, s.service.Evaluate(secret, guess))
		}
	}
}

func (s *ServiceSuite) TestValidateGuess() {
	tests := []struct {
		name    string
		raw     string
		length  int
		wantErr bool
	}{
		{"valid", "1234", 4, false},
		{"too short", "123", 4, true},
		{"too long", "12345", 4, true},
		{"empty", "", 4, true},
		{"letter", "12a4", 4, true},
		{"space", "12 4", 4, true},
		{"duplicate", "1123", 4, true},
		{"all ten", "0123456789", 10, false},
		{"unicode digit", "１２", 2, true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.service.ValidateGuess(tt.raw, tt.length)
			if tt.wantErr {
				s.ErrorIs(err, model.ErrInvalidGuess)
			} else {
				s.NoError(err)
			}
		})
	}
}

func (s *ServiceSuite) TestPoints() {
	s.Equal(20, s.service.Points(model.GuessResult{CorrectPositions: 2, CorrectDigits: 2}, false))
	s.Equal(0, s.service.Points(model.GuessResult{CorrectDigits: 3}, false))
	s.Equal(40+SolveBonus, s.service.Points(model.GuessResult{CorrectPositions: 4}, true))
}
