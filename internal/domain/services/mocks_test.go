package services

import (
	"context"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Load(ctx context.Context, path string) (*entities.Deck, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Deck), args.Error(1)
}

func (m *MockDocumentStore) Save(ctx context.Context, deck *entities.Deck, path string) error {
	args := m.Called(ctx, deck, path)
	return args.Error(0)
}

type MockImageInspector struct {
	mock.Mock
}

func (m *MockImageInspector) Inspect(data []byte) (*entities.Picture, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Picture), args.Error(1)
}

type MockDeckSourceParser struct {
	mock.Mock
}

func (m *MockDeckSourceParser) Parse(ctx context.Context, content []byte, baseDir string) (*entities.DeckSource, error) {
	args := m.Called(ctx, content, baseDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DeckSource), args.Error(1)
}

// fakeFigure writes fixed bytes and remembers where it was rendered
type fakeFigure struct {
	dpi      float64
	data     []byte
	saveErr  error
	rendered []string
}

func (f *fakeFigure) SavePNG(path string) error {
	f.rendered = append(f.rendered, path)
	if f.saveErr != nil {
		return f.saveErr
	}
	return os.WriteFile(path, f.data, 0o600)
}

func (f *fakeFigure) DPI() float64 {
	return f.dpi
}
