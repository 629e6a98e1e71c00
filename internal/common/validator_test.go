package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

type request struct {
	Name  string   `validate:"required"`
	Level *float64 `validate:"omitempty,gte=0,lte=200"`
}

func TestGenericEchoValidator(t *testing.T) {
	v := NewGenericEchoValidator()
	ok := 10.0
	tooHigh := 300.0

	if err := v.Validate(&request{Name: "x", Level: &ok}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := v.Validate(&request{Name: "x"}); err != nil {
		t.Errorf("Expected nil pointer to be skipped, got %v", err)
	}

	err := v.Validate(&request{Level: &tooHigh})
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", httpErr.Code)
	}
	msg, _ := httpErr.Message.(string)
	if !strings.Contains(msg, "Name") || !strings.Contains(msg, "Level") {
		t.Errorf("Expected both fields in message, got %q", msg)
	}
}

func TestGenericEchoValidator_Concurrent(t *testing.T) {
	v := NewGenericEchoValidator()
	ok := 50.0

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := v.Validate(&request{Name: fmt.Sprintf("n%d", i), Level: &ok}); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Expected no error, got %v", err)
	}
}
