package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/imgvault/imgvault/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBlobStore implements interfaces.BlobStore for testing
type MockBlobStore struct {
	mock.Mock
	name string
}

func (m *MockBlobStore) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(interfaces.ContentID), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, id interfaces.ContentID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBlobStore) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockBlobStore) Name() string {
	return m.name
}

func (m *MockBlobStore) LocationURI() string {
	return "mock:"
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMultiStore_Available(t *testing.T) {
	tests := []struct {
		name     string
		backends []bool
		expected bool
	}{
		{
			name:     "all backends available",
			backends: []bool{true, true, true},
			expected: true,
		},
		{
			name:     "some backends available",
			backends: []bool{false, true, false},
			expected: true,
		},
		{
			name:     "no backends available",
			backends: []bool{false, false, false},
			expected: false,
		},
		{
			name:     "no backends",
			backends: []bool{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var backends []interfaces.BlobStore
			for i, available := range tt.backends {
				mockStore := &MockBlobStore{name: fmt.Sprintf("mock-A%x", i)}
				mockStore.On("Available", mock.Anything).Return(available).Maybe()
				backends = append(backends, mockStore)
			}

			multi := NewMultiStore(backends, discardLogger())

			result := multi.Available(context.Background())
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMultiStore_Fetch(t *testing.T) {
	testID := interfaces.ContentID([32]byte{1, 2, 3, 4})
	testData := []byte("test data")
	testErr := errors.New("test error")

	tests := []struct {
		name          string
		setupMocks    func() []interfaces.BlobStore
		expectedData  []byte
		expectedError error
	}{
		{
			name: "first backend successful",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, testID).Return(testData, nil)

				mock2 := &MockBlobStore{name: "mock-B"}
				// Not called, the first backend succeeds

				return []interfaces.BlobStore{mock1, mock2}
			},
			expectedData: testData,
		},
		{
			name: "first backend fails, second succeeds",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, testID).Return(nil, testErr)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Fetch", mock.Anything, testID).Return(testData, nil)

				return []interfaces.BlobStore{mock1, mock2}
			},
			expectedData: testData,
		},
		{
			name: "unavailable backends are skipped",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(false)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Fetch", mock.Anything, testID).Return(testData, nil)

				return []interfaces.BlobStore{mock1, mock2}
			},
			expectedData: testData,
		},
		{
			name: "missing everywhere surfaces not-found sentinel",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Fetch", mock.Anything, testID).Return(nil, interfaces.ErrContentNotFound)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Fetch", mock.Anything, testID).Return(nil, interfaces.ErrContentNotFound)

				return []interfaces.BlobStore{mock1, mock2}
			},
			expectedError: interfaces.ErrContentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backends := tt.setupMocks()
			multi := NewMultiStore(backends, discardLogger())

			data, err := multi.Fetch(context.Background(), testID)

			if tt.expectedError != nil {
				assert.True(t, errors.Is(err, tt.expectedError))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedData, data)

			for _, backend := range backends {
				backend.(*MockBlobStore).AssertExpectations(t)
			}
		})
	}
}

func TestMultiStore_Store(t *testing.T) {
	testID := interfaces.ContentID([32]byte{1, 2, 3, 4})
	testData := []byte("test data")
	testErr := errors.New("test error")

	tests := []struct {
		name          string
		setupMocks    func() []interfaces.BlobStore
		expectedID    interfaces.ContentID
		expectedError bool
	}{
		{
			name: "all backends successful",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Store", mock.Anything, testData).Return(testID, nil)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Store", mock.Anything, testData).Return(testID, nil)

				return []interfaces.BlobStore{mock1, mock2}
			},
			expectedID: testID,
		},
		{
			name: "some backends fail",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Store", mock.Anything, testData).Return(testID, nil)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Store", mock.Anything, testData).Return(interfaces.ContentID{}, testErr)

				return []interfaces.BlobStore{mock1, mock2}
			},
			expectedID: testID,
		},
		{
			name: "all backends fail",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Store", mock.Anything, testData).Return(interfaces.ContentID{}, testErr)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Store", mock.Anything, testData).Return(interfaces.ContentID{}, testErr)

				return []interfaces.BlobStore{mock1, mock2}
			},
			expectedID:    interfaces.ContentID{},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backends := tt.setupMocks()
			multi := NewMultiStore(backends, discardLogger())

			id, err := multi.Store(context.Background(), testData)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedID, id)

			for _, backend := range backends {
				backend.(*MockBlobStore).AssertExpectations(t)
			}
		})
	}
}

func TestMultiStore_Delete(t *testing.T) {
	testID := interfaces.ContentID([32]byte{1, 2, 3, 4})
	testErr := errors.New("test error")

	tests := []struct {
		name          string
		setupMocks    func() []interfaces.BlobStore
		expectedError error
	}{
		{
			name: "deleted from all backends",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Delete", mock.Anything, testID).Return(nil)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Delete", mock.Anything, testID).Return(nil)

				return []interfaces.BlobStore{mock1, mock2}
			},
		},
		{
			name: "absent on one backend still succeeds",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Delete", mock.Anything, testID).Return(interfaces.ErrContentNotFound)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Delete", mock.Anything, testID).Return(nil)

				return []interfaces.BlobStore{mock1, mock2}
			},
		},
		{
			name: "absent everywhere reports not found",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Delete", mock.Anything, testID).Return(interfaces.ErrContentNotFound)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Delete", mock.Anything, testID).Return(interfaces.ErrContentNotFound)

				return []interfaces.BlobStore{mock1, mock2}
			},
			expectedError: interfaces.ErrContentNotFound,
		},
		{
			name: "hard failure propagates",
			setupMocks: func() []interfaces.BlobStore {
				mock1 := &MockBlobStore{name: "mock-A"}
				mock1.On("Available", mock.Anything).Return(true)
				mock1.On("Delete", mock.Anything, testID).Return(testErr)

				mock2 := &MockBlobStore{name: "mock-B"}
				mock2.On("Available", mock.Anything).Return(true)
				mock2.On("Delete", mock.Anything, testID).Return(nil)

				return []interfaces.BlobStore{mock1, mock2}
			},
			expectedError: testErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backends := tt.setupMocks()
			multi := NewMultiStore(backends, discardLogger())

			err := multi.Delete(context.Background(), testID)

			if tt.expectedError != nil {
				assert.True(t, errors.Is(err, tt.expectedError))
			} else {
				assert.NoError(t, err)
			}

			for _, backend := range backends {
				backend.(*MockBlobStore).AssertExpectations(t)
			}
		})
	}
}
