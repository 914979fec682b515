package integration

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestScenarios(t *testing.T) {
	for _, scenario := range GetAllScenarios() {
		t.Run(scenario.Name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(Run(scenario), qt.IsNil, qt.Commentf("%s", scenario.Description))
		})
	}
}

func TestGetAllScenarios(t *testing.T) {
	c := qt.New(t)

	scenarios := GetAllScenarios()
	c.Assert(scenarios, qt.HasLen, 7)

	names := make(map[string]bool)
	for _, scenario := range scenarios {
		c.Assert(scenario.Name, qt.Not(qt.Equals), "")
		c.Assert(scenario.Description, qt.Not(qt.Equals), "")
		c.Assert(scenario.Fixture, qt.Not(qt.Equals), "")
		c.Assert(scenario.TestFunc, qt.IsNotNil)
		c.Assert(names[scenario.Name], qt.IsFalse, qt.Commentf("duplicate scenario %s", scenario.Name))
		names[scenario.Name] = true
	}
}

func TestLoadFixture_ReadsMappingFile(t *testing.T) {
	c := qt.New(t)

	classes, err := LoadFixture(FixturesDir + "/004-mixed-sources")
	c.Assert(err, qt.IsNil)

	var names []string
	for _, class := range classes {
		names = append(names, class.Name)
	}
	c.Assert(names, qt.DeepEquals, []string{"Customer", "Address"})
}
