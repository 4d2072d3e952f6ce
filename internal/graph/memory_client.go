package graph

import (
	"context"
	"sync"
)

// MemoryClient is a scripted Client used to unit test repository logic
// without a running Neo4j instance. It records every statement and replays
// queued results (or errors) in FIFO order.
type MemoryClient struct {
	mu           sync.Mutex
	writeCalls   []Statement
	readCalls    []Statement
	readResults  []scripted
	writeResults []scripted
	err          error
	connectivity error
}

type scripted struct {
	res Result
	err error
}

// NewMemoryClient instantiates an empty scripted client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError makes every subsequent call fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// PushReadResult queues a result for the next ExecuteRead call.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults = append(m.readResults, scripted{res: res})
}

// PushReadRecords is shorthand for PushReadResult with the given records.
func (m *MemoryClient) PushReadRecords(records ...Record) {
	m.PushReadResult(Result{Records: records})
}

// PushWriteResult queues a result for the next write statement.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults = append(m.writeResults, scripted{res: res})
}

// PushWriteRecords is shorthand for PushWriteResult with the given records.
func (m *MemoryClient) PushWriteRecords(records ...Record) {
	m.PushWriteResult(Result{Records: records})
}

// PushWriteError queues a one-shot failure for the next write statement.
func (m *MemoryClient) PushWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults = append(m.writeResults, scripted{err: err})
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	return m.nextWrite(cypher, params)
}

func (m *MemoryClient) ExecuteWriteBatch(_ context.Context, statements []Statement) ([]Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	results := make([]Result, 0, len(statements))
	for _, stmt := range statements {
		res, err := m.nextWrite(stmt.Query, stmt.Params)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (m *MemoryClient) nextWrite(cypher string, params map[string]any) (Result, error) {
	m.writeCalls = append(m.writeCalls, Statement{Query: cypher, Params: cloneMap(params)})
	if len(m.writeResults) == 0 {
		return Result{}, nil
	}
	next := m.writeResults[0]
	m.writeResults = m.writeResults[1:]
	return next.res, next.err
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}

	m.readCalls = append(m.readCalls, Statement{Query: cypher, Params: cloneMap(params)})
	if len(m.readResults) == 0 {
		return Result{}, nil
	}
	next := m.readResults[0]
	m.readResults = m.readResults[1:]
	return next.res, next.err
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// WriteCalls returns a snapshot of executed write statements, batches flattened.
func (m *MemoryClient) WriteCalls() []Statement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Statement(nil), m.writeCalls...)
}

// ReadCalls returns a snapshot of executed read statements.
func (m *MemoryClient) ReadCalls() []Statement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Statement(nil), m.readCalls...)
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
