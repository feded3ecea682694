/*
Package operation converts volumes: it resolves pages, renders each one onto the device
canvas and packs the results into an archive.

	+-------------+
	|   Runner    |
	|   (batch)   |
	+------+------+
	       |
	+------+------+
	|  Processor  |
	|  (volume)   |
	+------+------+
	       |
	+------+------+------+------+
	|   source    |  transform  |
	|  (pages)    |  (pixels)   |
	+-------------+------+------+
	                     |
	              +------+------+
	              |   archive   |
	              |   (.cbz)    |
	              +-------------+

🎯 Purpose:
- Runs one volume from input to "<base> - kindle.cbz"
- Keeps going when single pages fail; the failure is recorded and logged
- Runs a batch of volumes one at a time and reports events to the front end

🔄 Flow:
1. Allocate a scratch directory (src/ for extraction, pages/ for output)
2. Resolve the input into naturally ordered pages
3. For each page: decode, transform, encode to pages/NNNN.jpg by attempt ordinal
4. Pack the successful pages in order and remove the scratch directory

⚡ Key Responsibilities:
- Page failures never abort a volume; volume failures never abort a batch
- Panics inside a page are recovered into a PageError
- Cancellation is checked before every page and before the archive write
- Callbacks are never invoked concurrently, even with several page workers

🔍 Example:

	p := operation.NewProcessor(operation.Options{})
	res, err := p.ProcessVolume(ctx, operation.Request{
		Input:  "My Manga v01.cbz",
		Config: config.Default(),
		Log:    func(msg string) { fmt.Println(msg) },
	})

	runner := operation.NewRunner(p, cfg)
	summary := runner.Run(ctx, inputs, func(ev operation.Event) { ... })
*/
package operation
