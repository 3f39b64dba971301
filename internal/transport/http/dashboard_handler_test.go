package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "unistats/internal/errors"
	"unistats/internal/middleware"
	"unistats/internal/services"
	"unistats/internal/shared/testutil"
	api "unistats/pkg/contracts/api/v1"
	"unistats/pkg/contracts/domain"
)

const testFocus = "old dominion u"

// MockDashboardService is a mock for the DashboardService interface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Focus() string {
	return m.Called().String(0)
}

func (m *MockDashboardService) Dimensions() []domain.Dimension {
	dims, _ := m.Called().Get(0).([]domain.Dimension)
	return dims
}

func (m *MockDashboardService) Hierarchy(ctx context.Context, key string) (domain.CategoryHierarchy, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.CategoryHierarchy), args.Error(1)
}

func (m *MockDashboardService) Sources(ctx context.Context, key string) ([]string, error) {
	args := m.Called(ctx, key)
	sources, _ := args.Get(0).([]string)
	return sources, args.Error(1)
}

func (m *MockDashboardService) MacroView(ctx context.Context, q services.MacroQuery) (domain.MacroView, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(domain.MacroView), args.Error(1)
}

func (m *MockDashboardService) MicroView(ctx context.Context, q services.MicroQuery) (domain.MicroView, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(domain.MicroView), args.Error(1)
}

func (m *MockDashboardService) RenderMacro(ctx context.Context, q services.MacroQuery, w io.Writer) error {
	return m.Called(ctx, q, w).Error(0)
}

func (m *MockDashboardService) RenderMicro(ctx context.Context, q services.MicroQuery, w io.Writer) error {
	return m.Called(ctx, q, w).Error(0)
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testDimensions() []domain.Dimension {
	return []domain.Dimension{
		{Key: "earned-doctorates", Sheet: "Earned Doctorates", Title: "Earned Doctorates", YLabel: "Doctorates", Interactive: true},
		{Key: "graduate-students", Sheet: "Graduate Students", Title: "Graduate Students", YLabel: "Students", Interactive: true},
		{Key: "source", Sheet: "Source", Title: "Source", YLabel: "Full-time grad students", Interactive: true},
	}
}

func newDashboardRouter(t *testing.T, svc DashboardService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	validator := middleware.NewValidator(middleware.DimensionKeys(testDimensions()))
	h := NewDashboardHandler(svc, validator, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/v1", h.Routes())
	return r
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestDashboardHandler_ListDimensions(t *testing.T) {
	svc := &MockDashboardService{}
	svc.On("Focus").Return(testFocus)
	svc.On("Dimensions").Return(testDimensions())

	rec := doGet(t, newDashboardRouter(t, svc), "/api/v1/dimensions")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.DimensionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testFocus, resp.Focus)
	require.Len(t, resp.Dimensions, 3)
	assert.Equal(t, "earned-doctorates", resp.Dimensions[0].Key)
	assert.Equal(t, "Full-time grad students", resp.Dimensions[2].YLabel)
}

func TestDashboardHandler_Hierarchy(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		serviceErr error
		wantStatus int
		wantType   string
	}{
		{name: "found", target: "/api/v1/dimensions/source/hierarchy", wantStatus: http.StatusOK},
		{name: "unknown dimension", target: "/api/v1/dimensions/weather/hierarchy", wantStatus: http.StatusBadRequest, wantType: apierrors.TypeValidation},
		{name: "missing sheet", target: "/api/v1/dimensions/source/hierarchy", serviceErr: apierrors.NewMissingSheetError("a.xlsx", "Source"), wantStatus: http.StatusNotFound, wantType: apierrors.TypeMissingSheet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDashboardService{}
			svc.On("Hierarchy", mock.Anything, "source").Return(domain.CategoryHierarchy{
				Macros:   []string{"Total"},
				Children: map[string][]string{"Total": {"Fellowships"}},
				Origin:   domain.HierarchyInferred,
			}, tt.serviceErr).Maybe()

			rec := doGet(t, newDashboardRouter(t, svc), tt.target)
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantType != "" {
				problem := decodeProblem(t, rec)
				assert.Equal(t, tt.wantType, problem["type"])
				assert.NotEmpty(t, problem["trace_id"])
				return
			}
			var h domain.CategoryHierarchy
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
			assert.Equal(t, []string{"Fellowships"}, h.Children["Total"])
		})
	}
}

func TestDashboardHandler_Sources(t *testing.T) {
	svc := &MockDashboardService{}
	svc.On("Focus").Return(testFocus)
	svc.On("Sources", mock.Anything, "source").Return([]string{"george mason u", testFocus}, nil)

	rec := doGet(t, newDashboardRouter(t, svc), "/api/v1/dimensions/source/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.SourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "source", resp.Dimension)
	assert.Equal(t, testFocus, resp.Focus)
	assert.Equal(t, []string{"george mason u", testFocus}, resp.Sources)
}

func TestDashboardHandler_MacroBinding(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   services.MacroQuery
	}{
		{
			name:   "defaults",
			target: "/api/v1/dimensions/source/macro",
			want:   services.MacroQuery{Dimension: "source"},
		},
		{
			name:   "category and sources",
			target: "/api/v1/dimensions/source/macro?category=Fellowships&source=george+mason+u&source=Virginia+Tech",
			want: services.MacroQuery{
				Dimension: "source",
				Category:  "Fellowships",
				Sources:   []string{"george mason u", "Virginia Tech"},
			},
		},
		{
			name:   "show all",
			target: "/api/v1/dimensions/earned-doctorates/macro?all=true",
			want:   services.MacroQuery{Dimension: "earned-doctorates", ShowAll: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDashboardService{}
			view := domain.MacroView{Dimension: tt.want.Dimension, Sources: []string{testFocus}}
			svc.On("MacroView", mock.Anything, tt.want).Return(view, nil)

			rec := doGet(t, newDashboardRouter(t, svc), tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			svc.AssertExpectations(t)

			var got domain.MacroView
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, []string{testFocus}, got.Sources)
		})
	}
}

func TestDashboardHandler_MacroErrors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		serviceErr error
		wantStatus int
		wantType   string
	}{
		{name: "bad boolean", target: "/api/v1/dimensions/source/macro?all=maybe", wantStatus: http.StatusBadRequest, wantType: apierrors.TypeValidation},
		{name: "control character", target: "/api/v1/dimensions/source/macro?category=a%00b", wantStatus: http.StatusBadRequest, wantType: apierrors.TypeValidation},
		{name: "unknown category", target: "/api/v1/dimensions/source/macro?category=Loans", serviceErr: services.ErrUnknownCategory, wantStatus: http.StatusNotFound, wantType: apierrors.TypeNotFound},
		{name: "timeout", target: "/api/v1/dimensions/source/macro", serviceErr: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout, wantType: apierrors.TypeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDashboardService{}
			svc.On("MacroView", mock.Anything, mock.Anything).Return(domain.MacroView{}, tt.serviceErr).Maybe()

			rec := doGet(t, newDashboardRouter(t, svc), tt.target)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, decodeProblem(t, rec)["type"])
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "MacroView", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDashboardHandler_MicroBinding(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   services.MicroQuery
	}{
		{
			name:   "absent selections mean all",
			target: "/api/v1/dimensions/source/micro?macro=Total",
			want:   services.MicroQuery{Dimension: "source", Macro: "Total"},
		},
		{
			name:   "explicit empty subcategories",
			target: "/api/v1/dimensions/source/micro?macro=Total&subcategory=",
			want:   services.MicroQuery{Dimension: "source", Macro: "Total", Subcategories: []string{}},
		},
		{
			name:   "selected entries",
			target: "/api/v1/dimensions/source/micro?macro=Total&subcategory=Fellowships&subcategory=Loans&compare=virginia+tech",
			want: services.MicroQuery{
				Dimension:     "source",
				Macro:         "Total",
				Subcategories: []string{"Fellowships", "Loans"},
				Compare:       "virginia tech",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockDashboardService{}
			svc.On("MicroView", mock.Anything, tt.want).Return(domain.MicroView{Dimension: "source", Macro: "Total"}, nil)

			rec := doGet(t, newDashboardRouter(t, svc), tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_PNG(t *testing.T) {
	t.Run("macro image", func(t *testing.T) {
		svc := &MockDashboardService{}
		svc.On("RenderMacro", mock.Anything, services.MacroQuery{Dimension: "source", Category: "Total"}, mock.Anything).
			Run(func(args mock.Arguments) {
				_, _ = args.Get(2).(io.Writer).Write(pngMagic)
			}).
			Return(nil)

		rec := doGet(t, newDashboardRouter(t, svc), "/api/v1/dimensions/source/macro.png?category=Total")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, pngMagic, rec.Body.Bytes())
	})

	t.Run("micro image", func(t *testing.T) {
		svc := &MockDashboardService{}
		svc.On("RenderMicro", mock.Anything, services.MicroQuery{Dimension: "source", Macro: "Total"}, mock.Anything).
			Run(func(args mock.Arguments) {
				_, _ = args.Get(2).(io.Writer).Write(pngMagic)
			}).
			Return(nil)

		rec := doGet(t, newDashboardRouter(t, svc), "/api/v1/dimensions/source/micro.png?macro=Total")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, pngMagic, rec.Body.Bytes())
	})

	t.Run("renderer unavailable", func(t *testing.T) {
		svc := &MockDashboardService{}
		svc.On("RenderMacro", mock.Anything, mock.Anything, mock.Anything).Return(services.ErrServiceUnavailable)

		rec := doGet(t, newDashboardRouter(t, svc), "/api/v1/dimensions/source/macro.png")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotEqual(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, apierrors.TypeServiceDown, decodeProblem(t, rec)["type"])
	})
}

func TestListParam(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "absent", query: "", want: nil},
		{name: "empty value", query: "source=", want: []string{}},
		{name: "trimmed", query: "source=+a+&source=b", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.want, listParam(req.URL.Query(), "source"))
		})
	}
}
