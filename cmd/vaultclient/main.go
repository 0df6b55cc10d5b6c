package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/imgvault/imgvault/client"
	"github.com/imgvault/imgvault/cmd/flags"
	"github.com/imgvault/imgvault/interfaces"
)

var passphraseFlag = &cli.StringFlag{
	Name:  "passphrase",
	Usage: "encryption passphrase; prompted for interactively when omitted",
}

var outputFlag = &cli.StringFlag{
	Name:  "output",
	Usage: "write the decrypted image to this file instead of stdout",
}

func main() {
	app := &cli.App{
		Name:  "vaultclient",
		Usage: "Upload, list, view and delete encrypted images",
		Flags: []cli.Flag{
			flags.ServerAddrFlag,
			flags.OwnerFlag,
		},
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Encrypt and store an image file",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{passphraseFlag},
				Action:    runUpload,
			},
			{
				Name:   "list",
				Usage:  "List stored images, newest first",
				Action: runList,
			},
			{
				Name:      "view",
				Usage:     "Retrieve and decrypt an image",
				ArgsUsage: "<content-id>",
				Flags:     []cli.Flag{passphraseFlag, outputFlag},
				Action:    runView,
			},
			{
				Name:      "delete",
				Usage:     "Delete an image",
				ArgsUsage: "<content-id>",
				Action:    runDelete,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func vaultClient(cCtx *cli.Context) *client.VaultClient {
	return &client.VaultClient{
		ServerAddr: cCtx.String(flags.ServerAddrFlag.Name),
		Owner:      interfaces.OwnerID(cCtx.String(flags.OwnerFlag.Name)),
	}
}

func passphrase(cCtx *cli.Context) (string, error) {
	if pass := cCtx.String(passphraseFlag.Name); pass != "" {
		return pass, nil
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read passphrase: %w", err)
	}
	return string(raw), nil
}

func contentIDArg(cCtx *cli.Context) (interfaces.ContentID, error) {
	if cCtx.NArg() != 1 {
		return interfaces.ContentID{}, fmt.Errorf("expected exactly one content id argument")
	}
	return interfaces.NewContentIDFromHex(cCtx.Args().First())
}

func runUpload(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := cCtx.Args().First()

	pass, err := passphrase(cCtx)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	record, err := vaultClient(cCtx).Upload(cCtx.Context, filepath.Base(path), mimeTypeForFile(path), file, pass)
	if err != nil {
		return err
	}

	fmt.Printf("uploaded %s as %s\n", record.OriginalName, record.ContentID.String())
	return nil
}

func runList(cCtx *cli.Context) error {
	records, err := vaultClient(cCtx).List(cCtx.Context)
	if err != nil {
		return err
	}

	for _, record := range records {
		fmt.Printf("%s  %8d  %-20s  %s\n",
			record.ContentID.String(), record.Size,
			record.CreatedAt.Format("2006-01-02 15:04:05"), record.OriginalName)
	}
	return nil
}

func runView(cCtx *cli.Context) error {
	id, err := contentIDArg(cCtx)
	if err != nil {
		return err
	}
	pass, err := passphrase(cCtx)
	if err != nil {
		return err
	}

	plaintext, _, err := vaultClient(cCtx).View(cCtx.Context, id, pass)
	if err != nil {
		return err
	}

	if output := cCtx.String(outputFlag.Name); output != "" {
		return os.WriteFile(output, plaintext, 0o600)
	}

	_, err = os.Stdout.Write(plaintext)
	return err
}

func runDelete(cCtx *cli.Context) error {
	id, err := contentIDArg(cCtx)
	if err != nil {
		return err
	}

	if err := vaultClient(cCtx).Delete(cCtx.Context, id); err != nil {
		return err
	}

	fmt.Printf("deleted %s\n", id.String())
	return nil
}

func mimeTypeForFile(path string) string {
	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
