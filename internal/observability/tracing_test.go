package observability

import (
	"context"
	"errors"
	"testing"
)

func TestStartSpan_InheritsTrace(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "GET /")
	_, child := StartSpan(ctx, "render")

	if child.TraceID != parent.TraceID {
		t.Errorf("trace id = %q, want %q", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("parent id = %q, want %q", child.ParentID, parent.SpanID)
	}
}

func TestSpan_LogValue(t *testing.T) {
	_, span := StartSpan(context.Background(), "load_dataset")
	span.SetTag("filename", "sales.xlsx")
	span.SetError(errors.New("bad zip"))
	span.Finish()

	attrs := map[string]string{}
	for _, a := range span.LogValue().Group() {
		attrs[a.Key] = a.Value.String()
	}

	if attrs["operation"] != "load_dataset" {
		t.Errorf("operation = %q", attrs["operation"])
	}
	if attrs["status"] != string(SpanStatusError) {
		t.Errorf("status = %q", attrs["status"])
	}
	if attrs["filename"] != "sales.xlsx" {
		t.Errorf("filename tag = %q", attrs["filename"])
	}
	if _, ok := attrs["duration"]; !ok {
		t.Error("finished span should log its duration")
	}
}
