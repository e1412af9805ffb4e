// Command xmss is a thin CLI front-end over package xmss: generate a
// keypair, sign a file, verify a signature, or list the parameter sets
// this build knows about. Grounded on the teacher's xmssmt/main.go,
// which wraps the same library in the same way with the same CLI
// framework.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/huelsing/xmss"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "xmss"
	app.Usage = "generate, sign and verify with XMSS stateful hash-based signatures"
	app.Commands = []cli.Command{
		cmdKeypair,
		cmdSign,
		cmdVerify,
		cmdAlgs,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "xmss: %s\n", err)
		os.Exit(1)
	}
}

var cmdAlgs = cli.Command{
	Name:  "algs",
	Usage: "list the registered XMSS parameter sets",
	Action: func(c *cli.Context) error {
		for _, name := range xmss.ListNames() {
			fmt.Println(name)
		}
		return nil
	},
}

var cmdKeypair = cli.Command{
	Name:      "keypair",
	Usage:     "generate a new keypair",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "alg", Value: "XMSS-SHA2_10_256", Usage: "parameter set name"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.NewExitError("expected exactly one argument: the key file name prefix", 1)
		}
		name := c.Args().Get(0)

		params, xerr := xmss.ParamsFromName(c.String("alg"))
		if xerr != nil {
			return cli.NewExitError(xerr.Error(), 1)
		}
		ctx, xerr := xmss.NewContext(params)
		if xerr != nil {
			return cli.NewExitError(xerr.Error(), 1)
		}

		container, xerr := xmss.OpenFileContainer(name + ".idx")
		if xerr != nil {
			return cli.NewExitError(xerr.Error(), 1)
		}

		sk, pk, xerr := xmss.GenerateKeyPair(ctx, rand.Reader, container)
		if xerr != nil {
			return cli.NewExitError(xerr.Error(), 1)
		}
		defer sk.Close()

		skBlob, err := sk.MarshalBinary()
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		pkBlob, err := pk.MarshalBinary()
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		if err := os.WriteFile(name+".sk", skBlob, 0600); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		if err := os.WriteFile(name+".pk", pkBlob, 0644); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		fmt.Printf("wrote %s.sk and %s.pk (%s)\n", name, name, c.String("alg"))
		return nil
	},
}

var cmdSign = cli.Command{
	Name:      "sign",
	Usage:     "sign a message with a private key",
	ArgsUsage: "<key-prefix> <message-file>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return cli.NewExitError("expected <key-prefix> <message-file>", 1)
		}
		prefix, msgPath := c.Args().Get(0), c.Args().Get(1)

		msg, err := os.ReadFile(msgPath)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		sk, xerr := loadPrivateKey(prefix)
		if xerr != nil {
			return cli.NewExitError(xerr.Error(), 1)
		}
		defer sk.Close()

		sig, xerr := sk.Sign(msg)
		if xerr != nil {
			return cli.NewExitError(xerr.Error(), 1)
		}
		blob, _ := sig.MarshalBinary(msg)
		fmt.Println(hex.EncodeToString(blob))
		return nil
	},
}

var cmdVerify = cli.Command{
	Name:      "verify",
	Usage:     "verify a signature against a public key",
	ArgsUsage: "<pk-file> <signature-hex>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return cli.NewExitError("expected <pk-file> <signature-hex>", 1)
		}
		pkPath, sigHex := c.Args().Get(0), c.Args().Get(1)

		pkBlob, err := os.ReadFile(pkPath)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		sigBlob, err := hex.DecodeString(sigHex)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		pk, xerr := xmss.UnmarshalPublicKey(pkBlob)
		if xerr != nil {
			return cli.NewExitError(xerr.Error(), 1)
		}
		sig, msg, xerr := xmss.UnmarshalSignature(pk.Context(), sigBlob)
		if xerr != nil {
			return cli.NewExitError(xerr.Error(), 1)
		}
		if xerr := pk.Verify(msg, sig); xerr != nil {
			return cli.NewExitError(xerr.Error(), 1)
		}
		fmt.Println("OK")
		return nil
	},
}

func loadPrivateKey(prefix string) (*xmss.PrivateKey, xmss.Error) {
	return xmss.LoadPrivateKey(prefix+".sk", prefix+".idx")
}
