package core

import (
	"testing"

	goerrors "errors"

	"github.com/stretchr/testify/assert"

	"github.com/voidshard/otto/pkg/errors"
)

func newTestValidator(t *testing.T, installed map[string]bool) *DependencyValidator {
	v, err := NewDependencyValidator("python3", func() (map[string]bool, error) {
		return installed, nil
	})
	assert.Nil(t, err)
	return v
}

func TestExtractImports(t *testing.T) {
	cases := []struct {
		Name   string
		Given  string
		Expect []string
	}{
		{
			Name:   "Simple",
			Given:  "import os\nimport requests\n",
			Expect: []string{"os", "requests"},
		},
		{
			Name:   "Submodule",
			Given:  "import os.path\nimport numpy.linalg\n",
			Expect: []string{"os", "numpy"},
		},
		{
			Name:   "Aliased",
			Given:  "import numpy as np\nimport pandas as pd\n",
			Expect: []string{"numpy", "pandas"},
		},
		{
			Name:   "CommaSeparated",
			Given:  "import os, sys, requests\n",
			Expect: []string{"os", "sys", "requests"},
		},
		{
			Name:   "FromImport",
			Given:  "from collections import OrderedDict\nfrom flask import Flask\n",
			Expect: []string{"collections", "flask"},
		},
		{
			Name:   "FromSubmodule",
			Given:  "from os.path import join\n",
			Expect: []string{"os"},
		},
		{
			Name:   "RelativeImportSkipped",
			Given:  "from .helpers import thing\nimport requests\n",
			Expect: []string{"requests"},
		},
		{
			Name:   "CommentsSkipped",
			Given:  "# import fake\nimport real  # trailing note\n",
			Expect: []string{"real"},
		},
		{
			Name:   "IndentedImport",
			Given:  "def f():\n    import requests\n",
			Expect: []string{"requests"},
		},
		{
			Name:   "TripleQuoteSkipped",
			Given:  "x = \"\"\"\nimport fake\n\"\"\"\nimport real\n",
			Expect: []string{"real"},
		},
		{
			Name:   "SingleTripleQuoteSkipped",
			Given:  "x = '''\nimport fake\n'''\nimport real\n",
			Expect: []string{"real"},
		},
		{
			Name:   "InlineTripleQuote",
			Given:  "x = \"\"\"docstring\"\"\"\nimport real\n",
			Expect: []string{"real"},
		},
		{
			Name:   "Deduplicated",
			Given:  "import requests\nimport requests\n",
			Expect: []string{"requests"},
		},
		{
			Name:   "TripleQuoteInsideOrdinaryString",
			Given:  "x = \"'''\"\ny = '\"\"\"'\nimport real\n",
			Expect: []string{"real"},
		},
		{
			Name:   "TripleQuoteInComment",
			Given:  "x = 1  # has ''' in a note\nimport real\n",
			Expect: []string{"real"},
		},
		{
			Name:   "EscapedQuoteInString",
			Given:  "x = 'it\\'s'\nimport real\n",
			Expect: []string{"real"},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			got, err := extractImports(c.Given)

			assert.Nil(t, err)
			assert.Equal(t, c.Expect, got)
		})
	}
}

func TestExtractImportsErrors(t *testing.T) {
	cases := []struct {
		Name  string
		Given string
	}{
		{"BareImport", "import\n"},
		{"BadModuleName", "import 1bad\n"},
		{"FromWithoutImport", "from requests\n"},
		{"UnterminatedString", "x = \"\"\"\nimport fake\n"},
		{"NulBytes", "import os\x00\n"},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			_, err := extractImports(c.Given)

			assert.NotNil(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	v := newTestValidator(t, map[string]bool{"requests": true, "opencv-python": true})

	report, err := v.Validate("import os\nimport requests\nimport cv2\nimport numpy\n")

	assert.Nil(t, err)
	// os is stdlib; cv2 is remapped to its installable name
	assert.Equal(t, []string{"requests", "opencv-python", "numpy"}, report.Imports)
	assert.Equal(t, []string{"requests", "opencv-python"}, report.Present)
	assert.Equal(t, []string{"numpy"}, report.Missing)
	assert.False(t, report.AllSatisfied())
}

func TestValidateRemaps(t *testing.T) {
	cases := []struct {
		Given  string
		Expect string
	}{
		{"cv2", "opencv-python"},
		{"PIL", "Pillow"},
		{"sklearn", "scikit-learn"},
		{"yaml", "PyYAML"},
		{"dateutil", "python-dateutil"},
		{"bs4", "beautifulsoup4"},
		{"dotenv", "python-dotenv"},
	}

	v := newTestValidator(t, map[string]bool{})
	for _, c := range cases {
		t.Run(c.Given, func(t *testing.T) {
			report, err := v.Validate("import " + c.Given + "\n")

			assert.Nil(t, err)
			assert.Equal(t, []string{c.Expect}, report.Missing)
		})
	}
}

func TestValidateAllSatisfied(t *testing.T) {
	v := newTestValidator(t, map[string]bool{})

	report, err := v.Validate("import os\nimport sys\nfrom json import loads\n")

	assert.Nil(t, err)
	assert.True(t, report.AllSatisfied())
	assert.Equal(t, []string{}, report.Imports)
}

func TestValidateParseError(t *testing.T) {
	v := newTestValidator(t, map[string]bool{})

	_, err := v.Validate("import 1bad\n")

	assert.True(t, goerrors.Is(err, errors.ErrParseFailed))
}

func TestValidateCaseInsensitiveSnapshot(t *testing.T) {
	// pip freeze reports canonical casing; matching is lowercased
	v := newTestValidator(t, map[string]bool{"pyyaml": true, "pillow": true})

	report, err := v.Validate("import yaml\nimport PIL\n")

	assert.Nil(t, err)
	assert.True(t, report.AllSatisfied())
}

func TestMissingPackagesMessage(t *testing.T) {
	assert.Equal(t, "", MissingPackagesMessage(nil))

	expect := `Missing Python packages detected!

Your script requires the following packages that are not installed:
numpy, pandas

To install these packages, run:
pip install numpy pandas

Or ask your administrator to install them in the backend environment.`
	assert.Equal(t, expect, MissingPackagesMessage([]string{"numpy", "pandas"}))
}

func TestInstallCommand(t *testing.T) {
	assert.Equal(t, "pip install numpy", InstallCommand([]string{"numpy"}))
	assert.Equal(t, "pip install a b", InstallCommand([]string{"a", "b"}))
}
