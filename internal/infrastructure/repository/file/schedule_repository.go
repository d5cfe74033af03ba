package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/fixture-feed/internal/domain/schedule"
	"github.com/riskibarqy/fixture-feed/internal/platform/logging"
)

// ScheduleRepository stores the schedule document as indented JSON.
type ScheduleRepository struct {
	path   string
	logger *logging.Logger
}

func NewScheduleRepository(path string, logger *logging.Logger) *ScheduleRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleRepository{path: path, logger: logger}
}

func (r *ScheduleRepository) Path() string {
	return r.path
}

func (r *ScheduleRepository) Save(ctx context.Context, doc schedule.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := encodeDocument(buf, doc); err != nil {
		return err
	}
	if err := writeAtomic(r.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write schedule %s: %w", r.path, err)
	}

	r.logger.InfoContext(ctx, "schedule written", "path", r.path, "bytes", buf.Len(), "matches", len(doc.Matches))
	return nil
}

func (r *ScheduleRepository) Previous(_ context.Context) (schedule.Document, bool, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return schedule.Document{}, false, nil
	}
	if err != nil {
		return schedule.Document{}, false, fmt.Errorf("read schedule %s: %w", r.path, err)
	}

	var doc schedule.Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return schedule.Document{}, false, fmt.Errorf("decode schedule %s: %w", r.path, err)
	}
	return doc, true, nil
}

func encodeDocument(buf *bytebufferpool.ByteBuffer, doc schedule.Document) error {
	if doc.Matches == nil {
		doc.Matches = []schedule.Entry{}
	}
	enc := sonic.ConfigStd.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	return nil
}
