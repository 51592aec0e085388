package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/cucumber/godog"

	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/password"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	dir          string
	instance     *ServerInstance
	client       *http.Client
	response     *http.Response
	responseBody []byte
	authToken    string
	lastArtifact string
}

// NewStepsContext creates a new steps context
func NewStepsContext() *StepsContext {
	return &StepsContext{client: &http.Client{}}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		s.cleanup()
		return ctx, err
	})

	// Background steps
	sc.Step(`^the portfolio server is running$`, s.thePortfolioServerIsRunning)
	sc.Step(`^an administrator "([^"]*)" exists with password "([^"]*)"$`, s.anAdministratorExists)

	// Authentication steps
	sc.Step(`^I register as "([^"]*)" with email "([^"]*)" and password "([^"]*)"$`, s.iRegister)
	sc.Step(`^I log in with email "([^"]*)" and password "([^"]*)"$`, s.iLogIn)
	sc.Step(`^I log out$`, s.iLogOut)
	sc.Step(`^I should receive a token with role "([^"]*)"$`, s.iShouldReceiveATokenWithRole)
	sc.Step(`^the account "([^"]*)" is deleted$`, s.theAccountIsDeleted)

	// Request steps
	sc.Step(`^I send a (GET|DELETE) request to "([^"]*)"$`, s.iSendARequest)
	sc.Step(`^I send a (GET|DELETE) request to "([^"]*)" without a token$`, s.iSendARequestWithoutToken)
	sc.Step(`^I send a (POST|PUT|PATCH) request to "([^"]*)" with:$`, s.iSendARequestWith)
	sc.Step(`^I send a (POST|PUT|PATCH) request to "([^"]*)" without a token with:$`, s.iSendARequestWithoutTokenWith)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response error should be "([^"]*)"$`, s.theResponseErrorShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, s.theResponseFieldShouldContain)
	sc.Step(`^the response field "([^"]*)" should be (\d+)$`, s.theResponseFieldShouldBeNumber)

	s.registerBackupSteps(sc)
}

func (s *StepsContext) cleanup() {
	if s.instance != nil {
		s.instance.Stop()
		s.instance = nil
	}
	if s.dir != "" {
		_ = os.RemoveAll(s.dir)
		s.dir = ""
	}
}

// Background steps

func (s *StepsContext) thePortfolioServerIsRunning() error {
	dir, err := os.MkdirTemp("", "portfolio-features-")
	if err != nil {
		return err
	}
	s.dir = dir

	s.instance, err = StartServer(dir)
	return err
}

func (s *StepsContext) anAdministratorExists(username, plaintext string) error {
	hash, err := password.NewHasher(s.instance.Config.BcryptRounds).Hash(plaintext)
	if err != nil {
		return err
	}
	return s.instance.Server.Users.CreateUser(&model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Role:     model.RoleAdmin,
	})
}

// Authentication steps

func (s *StepsContext) iRegister(username, email, plaintext string) error {
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, email, plaintext)
	if err := s.do("POST", "/api/auth/register", body, ""); err != nil {
		return err
	}
	s.rememberToken()
	return nil
}

func (s *StepsContext) iLogIn(email, plaintext string) error {
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, plaintext)
	if err := s.do("POST", "/api/auth/login", body, ""); err != nil {
		return err
	}
	s.rememberToken()
	return nil
}

func (s *StepsContext) iLogOut() error {
	if err := s.do("POST", "/api/auth/logout", "", s.authToken); err != nil {
		return err
	}
	s.authToken = ""
	return nil
}

func (s *StepsContext) rememberToken() {
	if s.response.StatusCode >= 300 {
		return
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(s.responseBody, &result); err == nil && result.Token != "" {
		s.authToken = result.Token
	}
}

func (s *StepsContext) iShouldReceiveATokenWithRole(role string) error {
	if s.authToken == "" {
		return fmt.Errorf("no token received, response: %s", s.responseBody)
	}
	claims, err := s.instance.Server.Issuer.Verify(s.authToken)
	if err != nil {
		return fmt.Errorf("token does not verify: %w", err)
	}
	if claims.Role.String() != role {
		return fmt.Errorf("expected role %q, got %q", role, claims.Role.String())
	}
	return nil
}

func (s *StepsContext) theAccountIsDeleted(email string) error {
	user, err := s.instance.Server.Users.Credentials(email)
	if err != nil {
		return err
	}
	return s.instance.Server.Users.DeleteUser(user.ID)
}

// Request steps

func (s *StepsContext) iSendARequest(method, path string) error {
	return s.do(method, path, "", s.authToken)
}

func (s *StepsContext) iSendARequestWithoutToken(method, path string) error {
	return s.do(method, path, "", "")
}

func (s *StepsContext) iSendARequestWith(method, path string, body *godog.DocString) error {
	return s.do(method, path, body.Content, s.authToken)
}

func (s *StepsContext) iSendARequestWithoutTokenWith(method, path string, body *godog.DocString) error {
	return s.do(method, path, body.Content, "")
}

func (s *StepsContext) do(method, path, body, token string) error {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, s.instance.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	s.response, err = s.client.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) field(path string) (interface{}, error) {
	var value interface{}
	if err := json.Unmarshal(s.responseBody, &value); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	for _, key := range strings.Split(path, ".") {
		obj, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: not an object in %s", key, s.responseBody)
		}
		if value, ok = obj[key]; !ok {
			return nil, fmt.Errorf("field %q not found in %s", path, s.responseBody)
		}
	}
	return value, nil
}

func (s *StepsContext) theResponseErrorShouldBe(expected string) error {
	return s.theResponseFieldShouldBe("error", expected)
}

func (s *StepsContext) theResponseFieldShouldBe(path, expected string) error {
	value, err := s.field(path)
	if err != nil {
		return err
	}
	if fmt.Sprint(value) != expected {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, fmt.Sprint(value))
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldContain(path, expected string) error {
	value, err := s.field(path)
	if err != nil {
		return err
	}
	if !strings.Contains(fmt.Sprint(value), expected) {
		return fmt.Errorf("expected %s to contain %q, got %q", path, expected, fmt.Sprint(value))
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBeNumber(path string, expected int) error {
	value, err := s.field(path)
	if err != nil {
		return err
	}
	n, ok := value.(float64)
	if !ok || int(n) != expected {
		return fmt.Errorf("expected %s to be %d, got %v", path, expected, value)
	}
	return nil
}
