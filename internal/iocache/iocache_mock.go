package iocache

import (
	"time"

	"github.com/huangsam/quizscale/internal/contract"
	"github.com/huangsam/quizscale/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(run schema.RunParams) (int64, error) {
	args := m.Called(run)
	return args.Get(0).(int64), args.Error(1)
}

// RecordStudent implements the RunStore interface.
func (m *MockRunStore) RecordStudent(runID int64, rec schema.ConvertedRecord, check schema.RecordReconciliation) error {
	args := m.Called(runID, rec, check)
	return args.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, totalStudents int, reconciled bool) error {
	args := m.Called(runID, endTime, totalStudents, reconciled)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStoreStatus), args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.ConversionRunRecord, error) {
	args := m.Called()
	return args.Get(0).([]schema.ConversionRunRecord), args.Error(1)
}

// GetAllQuestionWeights implements the RunStore interface.
func (m *MockRunStore) GetAllQuestionWeights() ([]schema.QuestionWeightRecord, error) {
	args := m.Called()
	return args.Get(0).([]schema.QuestionWeightRecord), args.Error(1)
}

// GetAllStudentScores implements the RunStore interface.
func (m *MockRunStore) GetAllStudentScores() ([]schema.StudentScoreRecord, error) {
	args := m.Called()
	return args.Get(0).([]schema.StudentScoreRecord), args.Error(1)
}

// GetAllQuestionScores implements the RunStore interface.
func (m *MockRunStore) GetAllQuestionScores() ([]schema.QuestionScoreRecord, error) {
	args := m.Called()
	return args.Get(0).([]schema.QuestionScoreRecord), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
