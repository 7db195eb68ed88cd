package scanner

// Inclusive bounds of the broad development range.
const (
	devRangeStart = 3000
	devRangeEnd   = 9999
)

type portCategory struct {
	name  string
	ports []uint16
}

// devPortCategories lists well-known ports of development tools, grouped by
// the tool family that usually binds them. Read-only.
var devPortCategories = [...]portCategory{
	{"React/Next.js", []uint16{3000, 3001, 3002, 3003, 3004, 3005}},
	{"Express/Node.js", []uint16{4000, 4001, 4002, 4003, 4004, 4005}},
	{"Python/Flask", []uint16{5000, 5001, 5002, 5003, 5004, 5005}},
	{"Vite", []uint16{5173, 5174, 5175, 5176, 5177, 5178}},
	{"Django", []uint16{8000, 8001, 8002, 8003, 8004, 8005}},
	{"Java/Tomcat", []uint16{8080, 8081, 8082, 8083, 8084, 8085}},
	{"Tauri", []uint16{1420, 1421, 1422, 1423, 1424, 1425}},
	{"Storybook", []uint16{6006, 6007, 6008, 6009, 6010, 6011}},
	{"Various", []uint16{7000, 7001, 7002, 7003, 7004, 7005, 9000, 9001, 9002, 9003, 9004, 9005}},
}

// CategoryOther is returned by Category for ports outside the allow-list.
const CategoryOther = "Other"

// IsDevelopmentPort reports whether port is a well-known development port or
// falls in the range 3000-9999. Anything bound in that range is flagged,
// development tool or not.
func IsDevelopmentPort(port uint16) bool {
	return Category(port) != CategoryOther || (port >= devRangeStart && port <= devRangeEnd)
}

// Category names the tool family a port is commonly used by
func Category(port uint16) string {
	for _, c := range devPortCategories {
		for _, p := range c.ports {
			if p == port {
				return c.name
			}
		}
	}
	return CategoryOther
}
