package main

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// DemoConfig mirrors the InputParameters-style YAML config structs
// (InputParameters/InputParameters.go, cmd/2D.go's InputParameters): a
// flat, tagged struct parsed straight out of the YAML file.
type DemoConfig struct {
	Title string `yaml:"Title"`

	Cells     int `yaml:"Cells"`
	BlockSize int `yaml:"BlockSize"`

	Strategy      string  `yaml:"Strategy"`
	WeightScaling string  `yaml:"WeightScaling"`
	PScale        float64 `yaml:"PScale"`

	UpdateInterval         string `yaml:"UpdateInterval"`
	UpdateFrequency        int    `yaml:"UpdateFrequency"`
	PartialUpdate          bool   `yaml:"PartialUpdate"`
	UpdateIntervalPartial  string `yaml:"UpdateIntervalPartial"`
	UpdateFrequencyPartial int    `yaml:"UpdateFrequencyPartial"`

	PRtol float64 `yaml:"PRtol"`

	OuterIterations int `yaml:"OuterIterations"`
}

func defaultDemoConfig() *DemoConfig {
	return &DemoConfig{
		Title:           "cpr-demo",
		Cells:           64,
		BlockSize:       3,
		Strategy:        "quasi_impes",
		WeightScaling:   "unit",
		UpdateInterval:  "step",
		UpdateFrequency: 1,
		OuterIterations: 3,
	}
}

func (c *DemoConfig) Parse(data []byte) error {
	return yaml.Unmarshal(data, c)
}

func (c *DemoConfig) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", c.Title)
	fmt.Printf("%d\t\t\t= Cells\n", c.Cells)
	fmt.Printf("%d\t\t\t= BlockSize\n", c.BlockSize)
	fmt.Printf("[%s]\t\t= Strategy\n", c.Strategy)
	fmt.Printf("[%s]\t\t= WeightScaling\n", c.WeightScaling)
	fmt.Printf("[%s]/%d\t\t= UpdateInterval/Frequency\n", c.UpdateInterval, c.UpdateFrequency)
	if c.PartialUpdate {
		fmt.Printf("[%s]/%d\t\t= UpdateIntervalPartial/FrequencyPartial\n", c.UpdateIntervalPartial, c.UpdateFrequencyPartial)
	}
	if c.PRtol > 0 {
		fmt.Printf("%g\t\t= PRtol\n", c.PRtol)
	}
}
