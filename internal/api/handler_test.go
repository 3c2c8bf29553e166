package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/meteora/weather-history/internal/export"
	"github.com/meteora/weather-history/internal/geo"
	"github.com/meteora/weather-history/internal/model"
	"github.com/meteora/weather-history/internal/repository"
	"github.com/meteora/weather-history/internal/service"
	"github.com/meteora/weather-history/internal/weather"
)

// MockService is a mock implementation of ServiceInterface
type MockService struct {
	mock.Mock
}

func (m *MockService) ResolveLocation(ctx context.Context, input string) (model.ResolvedLocation, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.ResolvedLocation), args.Error(1)
}

func (m *MockService) ReverseLocation(ctx context.Context, lat, lon float64) (model.ResolvedLocation, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(model.ResolvedLocation), args.Error(1)
}

func (m *MockService) FetchWeather(ctx context.Context, lat, lon float64) (*weather.Bundle, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*weather.Bundle), args.Error(1)
}

func (m *MockService) CreateRequest(ctx context.Context, in model.CreateRequestInput) (*model.WeatherRequest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherRequest), args.Error(1)
}

func (m *MockService) GetRequest(ctx context.Context, id string) (*model.WeatherRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherRequest), args.Error(1)
}

func (m *MockService) ListRequests(ctx context.Context) ([]model.WeatherRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WeatherRequest), args.Error(1)
}

func (m *MockService) UpdateRequest(ctx context.Context, id string, in model.UpdateRequestInput) (*model.WeatherRequest, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherRequest), args.Error(1)
}

func (m *MockService) DeleteRequest(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockService) ExportRequests(ctx context.Context, format string, ids []string, opts export.Options) (*export.Document, error) {
	args := m.Called(ctx, format, ids, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*export.Document), args.Error(1)
}

func serve(t *testing.T, ms *MockService, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	NewRouter(ms, nil, nil, nil).ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func sampleRecord() *model.WeatherRequest {
	ts := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	return &model.WeatherRequest{
		ID:         "req-1",
		LocationID: "loc-1",
		DateStart:  ts,
		DateEnd:    ts,
		Provider:   model.DefaultProvider,
		SnapshotID: "snap-1",
		CreatedAt:  ts,
		FetchedAt:  ts,
		Location: &model.Location{
			ID: "loc-1", UserInput: "Berlin", Name: "Berlin, Berlin, Germany",
			Latitude: 52.52, Longitude: 13.41, Source: model.SourceForwardGeocode,
		},
	}
}

func TestHandler_ResolveLocation(t *testing.T) {
	berlin := model.ResolvedLocation{Name: "Berlin, Berlin, Germany", Latitude: 52.52, Longitude: 13.41, Source: model.SourceForwardGeocode}

	tests := []struct {
		name           string
		body           string
		mockSetup      func(*MockService)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "successful resolution",
			body: `{"input":"Berlin"}`,
			mockSetup: func(ms *MockService) {
				ms.On("ResolveLocation", mock.Anything, "Berlin").Return(berlin, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing input",
			body:           `{}`,
			mockSetup:      func(ms *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "validation failed",
		},
		{
			name:           "malformed body",
			body:           `{"input":`,
			mockSetup:      func(ms *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid JSON body",
		},
		{
			name: "no match carries actionable message",
			body: `{"input":"Nowhereville"}`,
			mockSetup: func(ms *MockService) {
				ms.On("ResolveLocation", mock.Anything, "Nowhereville").Return(model.ResolvedLocation{}, geo.ErrNoMatch)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  geo.NoMatchMessage,
		},
		{
			name: "provider failure is generic",
			body: `{"input":"Paris"}`,
			mockSetup: func(ms *MockService) {
				ms.On("ResolveLocation", mock.Anything, "Paris").
					Return(model.ResolvedLocation{}, fmt.Errorf("%w: connection refused", geo.ErrResolution))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "failed to resolve location",
		},
		{
			name: "blank input from service",
			body: `{"input":"   "}`,
			mockSetup: func(ms *MockService) {
				ms.On("ResolveLocation", mock.Anything, "   ").Return(model.ResolvedLocation{}, geo.ErrEmptyInput)
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(MockService)
			tt.mockSetup(ms)

			rr := serve(t, ms, "POST", "/api/v1/geo/resolve", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeError(t, rr).Error)
			} else {
				var got model.ResolvedLocation
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, berlin, got)
			}
			ms.AssertExpectations(t)
		})
	}
}

func TestHandler_ReverseLocation(t *testing.T) {
	t.Run("names coordinates", func(t *testing.T) {
		ms := new(MockService)
		ms.On("ReverseLocation", mock.Anything, 48.85, 2.35).
			Return(model.ResolvedLocation{Name: "Paris, France", Latitude: 48.85, Longitude: 2.35, Source: model.SourceReverseGeocode}, nil)

		rr := serve(t, ms, "POST", "/api/v1/geo/reverse", `{"latitude":48.85,"longitude":2.35}`, nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"Paris, France"`)
		ms.AssertExpectations(t)
	})

	t.Run("out of range latitude", func(t *testing.T) {
		ms := new(MockService)
		rr := serve(t, ms, "POST", "/api/v1/geo/reverse", `{"latitude":91,"longitude":2.35}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeError(t, rr)
		assert.Contains(t, resp.Fields, "latitude")
		ms.AssertNotCalled(t, "ReverseLocation", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_FetchWeather(t *testing.T) {
	temp := 21.5

	tests := []struct {
		name           string
		body           string
		mockSetup      func(*MockService)
		expectedStatus int
		expectedFields []string
	}{
		{
			name: "successful fetch",
			body: `{"latitude":52.52,"longitude":13.41}`,
			mockSetup: func(ms *MockService) {
				ms.On("FetchWeather", mock.Anything, 52.52, 13.41).Return(&weather.Bundle{
					Latitude: 52.52, Longitude: 13.41, Current: &weather.Current{Temperature: &temp},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing coordinates",
			body:           `{"latitude":52.52}`,
			mockSetup:      func(ms *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"longitude"},
		},
		{
			name:           "longitude out of range",
			body:           `{"latitude":0,"longitude":-181}`,
			mockSetup:      func(ms *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"longitude"},
		},
		{
			name: "upstream failure",
			body: `{"latitude":1,"longitude":2}`,
			mockSetup: func(ms *MockService) {
				ms.On("FetchWeather", mock.Anything, 1.0, 2.0).Return(nil, fmt.Errorf("%w: status 502", weather.ErrFetch))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(MockService)
			tt.mockSetup(ms)

			rr := serve(t, ms, "POST", "/api/v1/weather/fetch", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if len(tt.expectedFields) > 0 {
				resp := decodeError(t, rr)
				for _, f := range tt.expectedFields {
					assert.Contains(t, resp.Fields, f)
				}
			}
			if tt.expectedStatus == http.StatusOK {
				var got weather.Bundle
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				require.NotNil(t, got.Current)
				assert.Equal(t, 21.5, *got.Current.Temperature)
			}
			ms.AssertExpectations(t)
		})
	}
}

func TestHandler_CreateRequest(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ms := new(MockService)
		ms.On("CreateRequest", mock.Anything, mock.MatchedBy(func(in model.CreateRequestInput) bool {
			return in.Input == "Berlin" && in.DateStart == "2024-05-01" && in.DateEnd == "2024-05-03" &&
				in.Notes != nil && *in.Notes == "trip"
		})).Return(sampleRecord(), nil)

		rr := serve(t, ms, "POST", "/api/v1/requests",
			`{"input":"Berlin","dateStart":"2024-05-01","dateEnd":"2024-05-03","notes":"trip"}`, nil)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got model.WeatherRequest
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "req-1", got.ID)
		require.NotNil(t, got.Location)
		assert.Equal(t, "Berlin, Berlin, Germany", got.Location.Name)
		ms.AssertExpectations(t)
	})

	t.Run("missing dates", func(t *testing.T) {
		ms := new(MockService)
		rr := serve(t, ms, "POST", "/api/v1/requests", `{"input":"Berlin"}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, "is required", resp.Fields["dateStart"])
		assert.Equal(t, "is required", resp.Fields["dateEnd"])
	})

	t.Run("service validation", func(t *testing.T) {
		ms := new(MockService)
		ms.On("CreateRequest", mock.Anything, mock.Anything).
			Return(nil, &service.ValidationError{Fields: map[string]string{"dateEnd": "must not be before dateStart"}})

		rr := serve(t, ms, "POST", "/api/v1/requests",
			`{"input":"Berlin","dateStart":"2024-05-03","dateEnd":"2024-05-01"}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "must not be before dateStart", decodeError(t, rr).Fields["dateEnd"])
	})

	t.Run("pipeline failure", func(t *testing.T) {
		ms := new(MockService)
		ms.On("CreateRequest", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

		rr := serve(t, ms, "POST", "/api/v1/requests",
			`{"input":"Berlin","dateStart":"2024-05-01","dateEnd":"2024-05-01"}`, nil)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "internal server error", decodeError(t, rr).Error)
	})
}

func TestHandler_ListRequests(t *testing.T) {
	t.Run("records", func(t *testing.T) {
		ms := new(MockService)
		ms.On("ListRequests", mock.Anything).Return([]model.WeatherRequest{*sampleRecord()}, nil)

		rr := serve(t, ms, "GET", "/api/v1/requests", "", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []model.WeatherRequest
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		ms := new(MockService)
		ms.On("ListRequests", mock.Anything).Return(nil, nil)

		rr := serve(t, ms, "GET", "/api/v1/requests", "", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestHandler_RequestByID(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           string
		mockSetup      func(*MockService)
		expectedStatus int
	}{
		{
			name:   "get found",
			method: "GET",
			mockSetup: func(ms *MockService) {
				ms.On("GetRequest", mock.Anything, "req-1").Return(sampleRecord(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "get missing",
			method: "GET",
			mockSetup: func(ms *MockService) {
				ms.On("GetRequest", mock.Anything, "req-1").Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "patch notes",
			method: "PATCH",
			body:   `{"notes":"updated"}`,
			mockSetup: func(ms *MockService) {
				ms.On("UpdateRequest", mock.Anything, "req-1", mock.MatchedBy(func(in model.UpdateRequestInput) bool {
					return in.Notes != nil && *in.Notes == "updated" && in.Input == nil && in.DateStart == nil
				})).Return(sampleRecord(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "patch missing",
			method: "PATCH",
			body:   `{"notes":"updated"}`,
			mockSetup: func(ms *MockService) {
				ms.On("UpdateRequest", mock.Anything, "req-1", mock.Anything).Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "patch invalid latitude",
			method:         "PATCH",
			body:           `{"latitude":120}`,
			mockSetup:      func(ms *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "delete",
			method: "DELETE",
			mockSetup: func(ms *MockService) {
				ms.On("DeleteRequest", mock.Anything, "req-1").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "delete missing",
			method: "DELETE",
			mockSetup: func(ms *MockService) {
				ms.On("DeleteRequest", mock.Anything, "req-1").Return(repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(MockService)
			tt.mockSetup(ms)

			rr := serve(t, ms, tt.method, "/api/v1/requests/req-1", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.method == "DELETE" && tt.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
			}
			ms.AssertExpectations(t)
		})
	}
}

func TestHandler_ExportRequests(t *testing.T) {
	t.Run("csv attachment with ids", func(t *testing.T) {
		ms := new(MockService)
		ms.On("ExportRequests", mock.Anything, "csv", []string{"a", "b"}, mock.Anything).Return(&export.Document{
			Body: []byte("id\n"), ContentType: "text/csv; charset=utf-8", Filename: "export.csv",
		}, nil)

		rr := serve(t, ms, "GET", "/api/v1/export?format=csv&ids=a,%20b,,", "", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="export.csv"`, rr.Header().Get("Content-Disposition"))
		assert.Empty(t, rr.Header().Get("Cache-Control"))
		assert.Equal(t, "id\n", rr.Body.String())
		ms.AssertExpectations(t)
	})

	t.Run("pdf uses locale and time zone", func(t *testing.T) {
		ms := new(MockService)
		ms.On("ExportRequests", mock.Anything, "pdf", []string(nil), mock.MatchedBy(func(o export.Options) bool {
			return o.Locale == language.German && o.Location != nil && o.Location.String() == "Europe/Berlin"
		})).Return(&export.Document{Body: []byte("%PDF"), ContentType: "application/pdf", Filename: "export.pdf"}, nil)

		rr := serve(t, ms, "GET", "/api/v1/export?format=pdf&tz=Europe/Berlin", "",
			map[string]string{"Accept-Language": "de-DE,de;q=0.9"})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
		ms.AssertExpectations(t)
	})

	t.Run("unsupported format", func(t *testing.T) {
		ms := new(MockService)
		ms.On("ExportRequests", mock.Anything, "docx", []string(nil), mock.Anything).
			Return(nil, fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, "docx"))

		rr := serve(t, ms, "GET", "/api/v1/export?format=docx", "", nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, "unsupported export format", resp.Error)
		assert.Contains(t, resp.Fields["format"], "pdf")
	})

	t.Run("invalid time zone", func(t *testing.T) {
		ms := new(MockService)
		rr := serve(t, ms, "GET", "/api/v1/export?format=md&tz=Mars/Olympus", "", nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Fields, "tz")
		ms.AssertNotCalled(t, "ExportRequests", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_HealthCheck(t *testing.T) {
	rr := serve(t, new(MockService), "GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestParseIDs(t *testing.T) {
	assert.Nil(t, parseIDs(""))
	assert.Equal(t, []string{"a", "b"}, parseIDs(" a ,,b, "))
}
