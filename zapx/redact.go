// Package zapx wraps a zapcore.Core with field redaction, so callers can
// log free-form labels (job names, routing keys) without leaking whatever
// a caller happened to put in them.
package zapx

import (
	"github.com/ecloudclub/elastipool/stringx"
	"go.uber.org/zap/zapcore"
)

// RedactedKeys lists the field keys whose string value gets masked before
// it reaches the underlying core. Middle characters are replaced with
// asterisks, keeping a short prefix/suffix for correlation in logs.
var RedactedKeys = map[string]bool{
	"job_label":   true,
	"routing_key": true,
	"session_id":  true,
}

type redactingCore struct {
	zapcore.Core
}

// NewRedactingCore wraps core so any field in RedactedKeys is masked.
func NewRedactingCore(core zapcore.Core) zapcore.Core {
	return &redactingCore{Core: core}
}

func (z *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	for i, fd := range fields {
		if fd.Type == zapcore.StringType && RedactedKeys[fd.Key] {
			fields[i].String = mask(fd.String)
		}
	}
	return &redactingCore{Core: z.Core.With(fields)}
}

func (z *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	for i, fd := range fields {
		if fd.Type == zapcore.StringType && RedactedKeys[fd.Key] {
			fields[i].String = mask(fd.String)
		}
	}
	return z.Core.Write(ent, fields)
}

func (z *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if z.Enabled(ent.Level) {
		return ce.AddCore(ent, z)
	}
	return ce
}

// mask keeps the first and last two bytes and blanks out the rest. It
// round-trips through the unsafe string/[]byte converters so the hot
// logging path avoids an extra allocation for the byte-wise rewrite.
func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	b := stringx.UnsafeToBytes(s)
	out := make([]byte, len(b))
	copy(out, b)
	for i := 2; i < len(out)-2; i++ {
		out[i] = '*'
	}
	return stringx.UnsafeToString(out)
}
