package signal

import "context"

// Fake is an in-memory Source for exercising the trigger layer without a
// real host. Callers set the fields directly before each check.
type Fake struct {
	Sample     ResourceSample
	Services_  []ServiceStatus
	Logs       []LogLine
	NextCursor string

	ResourcesErr error
	ServicesErr  error
	LogsErr      error
}

func (f *Fake) Resources(_ context.Context) (ResourceSample, error) {
	return f.Sample, f.ResourcesErr
}

func (f *Fake) Services(_ context.Context, names []string) ([]ServiceStatus, error) {
	if f.ServicesErr != nil {
		return nil, f.ServicesErr
	}
	byName := make(map[string]ServiceStatus, len(f.Services_))
	for _, s := range f.Services_ {
		byName[s.Name] = s
	}
	out := make([]ServiceStatus, 0, len(names))
	for _, n := range names {
		if s, ok := byName[n]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, ServiceStatus{Name: n, Active: true, State: "active"})
	}
	return out, nil
}

func (f *Fake) LogsSince(_ context.Context, _ string) ([]LogLine, string, error) {
	if f.LogsErr != nil {
		return nil, "", f.LogsErr
	}
	return f.Logs, f.NextCursor, nil
}
