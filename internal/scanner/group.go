package scanner

import "sort"

// UnknownProcess labels ports whose owner could not be resolved.
const UnknownProcess = "unknown"

// ProcessGroup collects the ports held by one process name
type ProcessGroup struct {
	Process    string `json:"process_name" yaml:"process_name"`
	Ports      []Port `json:"ports" yaml:"ports"`
	TotalPorts int    `json:"total_ports" yaml:"total_ports"`
}

// GroupByProcess groups ports by process name, sorted by name. Ports keep
// their relative order inside a group.
func GroupByProcess(ports []Port) []ProcessGroup {
	index := make(map[string]int)
	var groups []ProcessGroup

	for _, p := range ports {
		name := p.Process
		if name == "" {
			name = UnknownProcess
		}

		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, ProcessGroup{Process: name})
		}
		groups[i].Ports = append(groups[i].Ports, p)
		groups[i].TotalPorts++
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Process < groups[j].Process
	})

	return groups
}
