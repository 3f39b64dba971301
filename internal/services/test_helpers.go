package services

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"unistats/pkg/contracts/domain"
)

// MockObservationSource is a mock for the ObservationSource interface
type MockObservationSource struct {
	mock.Mock
}

func (m *MockObservationSource) Normalize(ctx context.Context, sheet string) ([]domain.Observation, error) {
	args := m.Called(ctx, sheet)
	rows, _ := args.Get(0).([]domain.Observation)
	return rows, args.Error(1)
}

// MockChartRenderer is a mock for the ChartRenderer interface
type MockChartRenderer struct {
	mock.Mock
}

func (m *MockChartRenderer) Render(w io.Writer, chart domain.Chart) error {
	return m.Called(w, chart).Error(0)
}

// MockClientCounter is a mock for the ClientCounter interface
type MockClientCounter struct {
	mock.Mock
}

func (m *MockClientCounter) ClientCount() int {
	return m.Called().Int(0)
}
