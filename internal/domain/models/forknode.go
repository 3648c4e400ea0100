package models

import "fmt"

// ForkNode is a local anvil instance forking a live network
type ForkNode struct {
	Name    string `json:"name"`
	Port    int    `json:"port"`
	ForkURL string `json:"forkUrl,omitempty"`
	// ForkBlock pins the fork; zero forks the latest block
	ForkBlock uint64 `json:"forkBlock,omitempty"`
	PidFile   string `json:"pidFile"`
	LogFile   string `json:"logFile"`
}

// RPCURL is the local endpoint of the node
func (n *ForkNode) RPCURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", n.Port)
}

// ForkNodeStatus is the observed state of a fork node
type ForkNodeStatus struct {
	Running       bool   `json:"running"`
	PID           int    `json:"pid,omitempty"`
	RPCURL        string `json:"rpcUrl,omitempty"`
	LogFile       string `json:"logFile"`
	RPCHealthy    bool   `json:"rpcHealthy"`
	ClientVersion string `json:"clientVersion,omitempty"`
	Error         string `json:"error,omitempty"`
}
