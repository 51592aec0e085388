package integration

import (
	"testing"

	"github.com/cucumber/godog"

	"github.com/vincentyu/portfolio-backend/pkg/audit"
)

func TestFeatures(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping feature tests in short mode.")
	}
	audit.SetEnabled(false)

	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			steps := NewStepsContext()
			steps.RegisterSteps(sc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("Non-zero status returned, failed to run feature tests")
	}
}
