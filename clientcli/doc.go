// Package clientcli provides a client library for sitehost servers.
//
// It publishes sites from local files and directories, lists, deletes and
// restores sites, downloads zip exports and reports usage. Directories are
// zipped client-side and sent through the JSON upload endpoint. The package
// includes profile-based configuration for managing multiple servers.
//
// # Basic Usage
//
// Create a client and publish a directory:
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:5000"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Upload(ctx, clientcli.UploadOptions{
//		Name:  "My Portfolio",
//		Paths: []string{"./public"},
//	})
//	fmt.Println(result.URL)
//
// # Profile Configuration
//
// Use profiles to manage multiple server configurations:
//
//	configFile, err := clientcli.LoadConfigFile("~/.sitehost/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Errors
//
// Server errors are returned as *APIError. Compare with the sentinels:
//
//	if errors.Is(err, clientcli.ErrConflict) {
//		// name already taken
//	}
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, result)
package clientcli
