package main

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var (
	predictClassFiles = predict.Files("*.yaml")

	cmd = &complete.Command{
		Sub: map[string]*complete.Command{
			CHECK_SUBCMD: {
				Flags: map[string]complete.Predictor{
					"json": predict.Nothing,
				},
				Args: predictClassFiles,
			},
			COMPILE_SUBCMD: {
				Flags: map[string]complete.Predictor{
					"json": predict.Nothing,
					"only": predict.Nothing,
				},
				Args: predictClassFiles,
			},
			TEST_SUBCMD: {
				Flags: map[string]complete.Predictor{
					"watch": predict.Nothing,
					"only":  predict.Nothing,
				},
				Args: predictClassFiles,
			},
			HELP_SUBCMD: {
				Args: predict.Set{CHECK_SUBCMD, COMPILE_SUBCMD, TEST_SUBCMD},
			},
			INSTALL_COMPLETIONS_SUBCMD:   {},
			UNINSTALL_COMPLETIONS_SUBCMD: {},
		},
	}
)
