package retrieval

import "github.com/poiesic/veridoc/index"

// SearchMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type SearchMonitor interface {
	Start(query string)
	AfterCriterionSearch(hits []index.Hit)
	AfterHintSearch(hits []index.Hit)
	Finish(hits []index.Hit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterCriterionSearch(_ []index.Hit) {}
func (n *noopMonitor) AfterHintSearch(_ []index.Hit)      {}
func (n *noopMonitor) Finish(_ []index.Hit)               {}
