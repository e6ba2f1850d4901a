package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/minio/minio-go/v7"

	"github.com/resqed/resqed-bot/internal/domain/entities"
)

var ErrInvalidQuestionBank = errors.New("invalid question bank")

// QuestionSource fetches the raw question bank document.
type QuestionSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// QuestionRepository loads the question bank from a source.
type QuestionRepository struct {
	source   QuestionSource
	validate *validator.Validate
}

// NewQuestionRepository creates a QuestionRepository reading from source.
func NewQuestionRepository(source QuestionSource) *QuestionRepository {
	v := validator.New()
	v.RegisterStructValidation(validateAnswerInOptions, entities.QuizQuestion{})

	return &QuestionRepository{
		source:   source,
		validate: v,
	}
}

// Fetch retrieves, decodes and validates the question bank.
func (r *QuestionRepository) Fetch(ctx context.Context) (entities.QuestionBank, error) {
	rc, err := r.source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open question bank: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var bank entities.QuestionBank
	if err := sonic.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question bank JSON: %w", err)
	}

	for topic, byDifficulty := range bank {
		for difficulty, pool := range byDifficulty {
			for i, q := range pool {
				if err := r.validate.Struct(q); err != nil {
					return nil, fmt.Errorf("%w: %s/%s question %d: %v",
						ErrInvalidQuestionBank, topic, difficulty, i, err)
				}
			}
		}
	}

	return bank, nil
}

func validateAnswerInOptions(sl validator.StructLevel) {
	q, ok := sl.Current().Interface().(entities.QuizQuestion)
	if !ok {
		return
	}
	if !slices.Contains(q.Options, q.Answer) {
		sl.ReportError(q.Answer, "Answer", "answer", "answer_in_options", "")
	}
}

// NewQuestionSource picks a source by location: s3://bucket/object goes
// through MinIO, http(s) URLs are fetched over HTTP, anything else is a
// local file path.
func NewQuestionSource(location string, mc *minio.Client, httpClient *http.Client) (QuestionSource, error) {
	switch {
	case strings.HasPrefix(location, "s3://"):
		if mc == nil {
			return nil, fmt.Errorf("question source %q requires object storage configuration", location)
		}
		bucket, object, ok := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
		if !ok || bucket == "" || object == "" {
			return nil, fmt.Errorf("invalid object location %q", location)
		}
		return &ObjectSource{client: mc, bucket: bucket, object: object}, nil

	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		return &HTTPSource{client: httpClient, url: location}, nil

	default:
		return FileSource(strings.TrimPrefix(location, "file://")), nil
	}
}

// FileSource reads the question bank from a local file.
type FileSource string

func (s FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(string(s))
}

// HTTPSource fetches the question bank with a GET request.
type HTTPSource struct {
	client *http.Client
	url    string
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// ObjectSource reads the question bank from an object storage bucket.
type ObjectSource struct {
	client *minio.Client
	bucket string
	object string
}

func (s *ObjectSource) Open(ctx context.Context) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", s.bucket, s.object, err)
	}
	// GetObject is lazy; Stat surfaces missing objects before decoding.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("stat object %s/%s: %w", s.bucket, s.object, err)
	}
	return obj, nil
}
