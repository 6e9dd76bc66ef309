package analysis

import (
	"fmt"
	"path/filepath"
	"time"
)

// Report file naming: one file per day, named after the date.
const (
	OutputFilePrefix = "performance_analysis_report_"
	OutputFileSuffix = ".html"
	OutputTimeLayout = "02012006"
)

// OutputPath returns where the engine is told to write the report for the day of t.
// One report per day is the intended cadence, so a rerun on the same day
// overwrites the earlier report.
func OutputPath(reportDir string, t time.Time) string {
	return filepath.Join(reportDir, OutputFilePrefix+t.Format(OutputTimeLayout)+OutputFileSuffix)
}

// BuildInstruction returns the task description for the engine, naming
// outputPath as the file to write.
func BuildInstruction(outputPath string) string {
	return fmt.Sprintf(`Please perform a comprehensive performance analysis and save the results as a complete HTML report.

IMPORTANT: Save the HTML report to: %[1]s

ANALYSIS REQUIREMENTS:
1. **Database Performance**
   - Check PostgreSQL slow query logs
   - Analyze connection pool usage
   - Identify queries slower than 1000ms
   - Check for missing indexes

2. **System Resources**
   - CPU usage patterns
   - Memory utilization
   - Disk I/O bottlenecks

3. **Multi-Tenant Metrics**
   - Per-tenant database size and growth
   - Resource usage by subdomain
   - Heavy user identification

4. **Recommendations**
   - Prioritized optimization opportunities
   - Quick wins (less than one day of work)
   - Long-term improvements

REPORT MUST INCLUDE:
- Executive summary with the top 3 critical issues
- Detailed findings with metrics
- Actionable recommendations
- SQL optimization scripts where applicable

HTML REQUIREMENTS:
- Complete HTML document with proper structure
- Embedded CSS styling suitable for email clients
- Styled tables, code blocks and clear section headings

Analyze logs from the last 24 hours.

CRITICAL: Save the complete HTML report to %[1]s`, outputPath)
}
