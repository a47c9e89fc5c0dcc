package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/codecrdt/modeval/internal/analysis"
	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/statistics"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one group of checks in a report.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one comparison or pooling gate.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a test assertion failure.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents an unexpected error during test execution.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a test as skipped.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a report to JUnit XML. Mode comparisons pass
// whether or not they are significant and are skipped when untested. Paired
// metrics fail when their pooled estimate does not pass the heterogeneity
// gate.
func ConvertToJUnit(r *analysis.Report) *JUnitTestSuites {
	timestamp := ""
	if !r.GeneratedAt.IsZero() {
		timestamp = r.GeneratedAt.Format(time.RFC3339)
	}
	props := []JUnitProperty{
		{Name: "confidence_level", Value: fmt.Sprintf("%.4f", r.ConfidenceLevel)},
		{Name: "corrected_alpha", Value: fmt.Sprintf("%.6f", r.StatisticalTests.Correction.Corrected)},
		{Name: "evaluations", Value: fmt.Sprintf("%d", r.Overall.TotalEvaluations)},
	}

	comparisons := JUnitTestSuite{Name: "mode-comparisons", Timestamp: timestamp, Properties: props}
	for _, m := range models.AllMetrics {
		c, ok := r.Overall.Comparisons[m.Label()]
		if !ok {
			continue
		}
		comparisons.TestCases = append(comparisons.TestCases, convertComparison(c))
	}
	tally(&comparisons)

	paired := JUnitTestSuite{Name: "paired-pooling", Timestamp: timestamp, Properties: props}
	for _, p := range r.Paired {
		paired.TestCases = append(paired.TestCases, convertPaired(p))
	}
	tally(&paired)

	suites := &JUnitTestSuites{TestSuites: []JUnitTestSuite{comparisons, paired}}
	for _, s := range suites.TestSuites {
		suites.Tests += s.Tests
		suites.Failures += s.Failures
		suites.Errors += s.Errors
	}
	return suites
}

func tally(s *JUnitTestSuite) {
	s.Tests = len(s.TestCases)
	for _, tc := range s.TestCases {
		switch {
		case tc.Failure != nil:
			s.Failures++
		case tc.Error != nil:
			s.Errors++
		case tc.Skipped != nil:
			s.Skipped++
		}
	}
}

func convertComparison(c statistics.ComparisonResult) JUnitTestCase {
	tc := JUnitTestCase{Name: c.Metric, Classname: "comparison"}
	if !c.Tested() {
		tc.Skipped = &JUnitSkipped{Message: fmt.Sprintf("not tested (%s): n1=%d n2=%d", c.TestUsed, c.N1, c.N2)}
	}
	return tc
}

func convertPaired(p analysis.PairedAnalysis) JUnitTestCase {
	meta := p.Meta
	tc := JUnitTestCase{Name: p.Metric, Classname: "paired"}
	switch {
	case len(meta.Tasks) == 0:
		tc.Skipped = &JUnitSkipped{Message: "no task has a measurable paired effect"}
	case !meta.PoolingValid:
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("%s: I2=%.1f%% across %d tasks", p.Metric, meta.I2, len(meta.Tasks)),
			Type:    "HeterogeneityGate",
			Body:    meta.Interpretation,
		}
	}
	return tc
}

// WriteJUnit writes JUnit XML for r to w.
func WriteJUnit(w io.Writer, r *analysis.Report) error {
	suites := ConvertToJUnit(r)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	output = append(output, '\n')
	_, err = w.Write(output)
	return err
}
