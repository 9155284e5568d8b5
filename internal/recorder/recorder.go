package recorder

import (
	"strconv"
	"strings"
	"time"

	"GoldSentinel/internal/model"
)

// CycleRow is one evaluated cycle.
type CycleRow struct {
	ID         string  `db:"id"`
	Timestamp  int64   `db:"timestamp"`
	Stage      string  `db:"stage"`
	Price      float64 `db:"price"`
	Levels     string  `db:"levels"`
	Signal     string  `db:"signal"`
	Pattern    string  `db:"pattern"`
	ShortBias  string  `db:"short_bias"`
	LongBias   string  `db:"long_bias"`
	Error      string  `db:"error"`
	DurationMS int64   `db:"duration_ms"`
}

// AlertRow is one dispatched alert.
type AlertRow struct {
	CycleID    string  `db:"cycle_id"`
	Timestamp  int64   `db:"timestamp"`
	Symbol     string  `db:"symbol"`
	Signal     string  `db:"signal"`
	Entry      float64 `db:"entry"`
	StopLoss   float64 `db:"stop_loss"`
	TakeProfit float64 `db:"take_profit"`
	LotSize    float64 `db:"lot_size"`
	Levels     string  `db:"levels"`
	Session    string  `db:"session"`
	Delivered  bool    `db:"delivered"`
}

// Recorder keeps an audit trail of cycles for later analysis. It is never
// read back by the engine; repeat suppression lives in memory only.
type Recorder interface {
	RecordCycle(res *model.CycleResult) error
	RecentAlerts(limit int) ([]AlertRow, error)
	Close() error
}

func newCycleRow(res *model.CycleResult) CycleRow {
	row := CycleRow{
		ID:         res.ID,
		Timestamp:  res.StartedAt.Unix(),
		Stage:      string(res.Stage),
		Price:      res.Price,
		Levels:     joinLevels(res.Levels),
		Signal:     res.Signal.String(),
		Pattern:    res.Pattern,
		ShortBias:  res.ShortBias.String(),
		LongBias:   res.LongBias.String(),
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		row.Error = res.Err.Error()
	}
	return row
}

func newAlertRow(res *model.CycleResult) AlertRow {
	a := res.Alert
	return AlertRow{
		CycleID:    res.ID,
		Timestamp:  a.CreatedAt.Unix(),
		Symbol:     a.Symbol,
		Signal:     a.Signal.String(),
		Entry:      a.Entry,
		StopLoss:   a.StopLoss,
		TakeProfit: a.TakeProfit,
		LotSize:    a.LotSize,
		Levels:     joinLevels(a.Levels),
		Session:    a.Session,
		Delivered:  res.Stage == model.StageDispatched,
	}
}

func joinLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, lv := range levels {
		parts[i] = strconv.FormatFloat(lv, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Time returns the row timestamp.
func (a AlertRow) Time() time.Time {
	return time.Unix(a.Timestamp, 0)
}
