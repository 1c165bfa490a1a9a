package reservations

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultIDPrefix starts every generated reservation ID.
const DefaultIDPrefix = "RSV-"

type IDGenerator interface {
	NewID() string
}

// SequenceIDs builds IDs as prefix + base36 unix millis + "-" + base36
// per-process sequence + "-" + random hex. The sequence alone keeps IDs
// unique inside one process; the timestamp and random part keep them
// apart across restarts and replicas.
type SequenceIDs struct {
	prefix string
	seq    atomic.Uint64
	now    func() time.Time
}

func NewSequenceIDs(prefix string) *SequenceIDs {
	return &SequenceIDs{prefix: prefix, now: time.Now}
}

func (g *SequenceIDs) NewID() string {
	n := g.seq.Add(1)
	rnd := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]

	var b strings.Builder
	b.Grow(len(g.prefix) + 24)
	b.WriteString(g.prefix)
	b.WriteString(strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36)))
	b.WriteByte('-')
	b.WriteString(strings.ToUpper(strconv.FormatUint(n, 36)))
	b.WriteByte('-')
	b.WriteString(strings.ToUpper(rnd))
	return b.String()
}
