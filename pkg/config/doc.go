/*
Package config holds the conversion configuration for kindlecbz.

	            +-------------+
	            |   Config    |
	            |  (value)    |
	            +------+------+
	                   |
	   +---------+-----+-----+---------+
	   |         |           |         |
	+--+---+ +---+--+   +----+---+ +---+----+
	| YAML | | HCL  |   |  JSON  | |  env   |
	+------+ +------+   +--------+ +--------+

🎯 Purpose:
- Defines the target geometry, render options and device presets
- Loads overrides from YAML, HCL or JSON files and KINDLECBZ_* variables
- Validates values and fills defaults

🔄 Flow:
1. Start from Default() (1072x1448, white, sharpen 1.0, contrast 1.08, quality 92)
2. Overlay a config file picked by extension through the Parser registry
3. Overlay environment variables with ApplyEnv
4. Validate

A device preset sets the geometry; explicit target_width/target_height replace it and
turn the config into a custom geometry.

🔍 Example:

	cfg, err := config.Load(ctx, "kindlecbz.yaml")
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
*/
package config
