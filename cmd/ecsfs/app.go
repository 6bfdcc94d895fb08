package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/weberc2/ecsfs/pkg/filesystem"
	"github.com/weberc2/ecsfs/pkg/format"
	"github.com/weberc2/ecsfs/pkg/s3image"
	. "github.com/weberc2/ecsfs/pkg/types"
)

type Volume = filesystem.Volume

// objectStoreFunc builds the object store the remote image commands use.
type objectStoreFunc func(*Config) (s3image.ObjectStore, error)

func s3ObjectStore(c *Config) (s3image.ObjectStore, error) {
	cfg := aws.NewConfig()
	if c.S3Region != "" {
		cfg = cfg.WithRegion(c.S3Region)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}
	return &s3image.S3ObjectStore{Client: s3.New(sess)}, nil
}

func newApp(stdout io.Writer, objectStore objectStoreFunc) *cli.App {
	var config Config

	withVolume := func(f func(*Volume, *cli.Context) error) cli.ActionFunc {
		return func(ctx *cli.Context) error {
			v, err := filesystem.MountImage(config.Disk)
			if err != nil {
				return err
			}
			if err := f(v, ctx); err != nil {
				if unmountErr := v.Unmount(); unmountErr != nil {
					log.Warnf("unmounting after failure: %v", unmountErr)
				}
				return err
			}
			return v.Unmount()
		}
	}

	withImages := func(
		f func(*s3image.Store, *cli.Context) error,
	) cli.ActionFunc {
		return func(ctx *cli.Context) error {
			if err := config.ValidateS3(); err != nil {
				return err
			}
			objects, err := objectStore(&config)
			if err != nil {
				return err
			}
			return f(&s3image.Store{
				ObjectStore: &s3image.GzipObjectStore{ObjectStore: objects},
				Bucket:      config.S3Bucket,
				Prefix:      config.S3Prefix,
			}, ctx)
		}
	}

	return &cli.App{
		Name:   appName,
		Usage:  "manipulate ECS150FS volume images",
		Writer: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "disk",
				Aliases: []string{"d"},
				Usage:   "path to the volume image",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "logrus level: debug, info, warn, error",
			},
		},
		Before: func(ctx *cli.Context) error {
			c, err := LoadConfig()
			if err != nil {
				return err
			}
			if ctx.IsSet("disk") {
				c.Disk = ctx.String("disk")
			}
			if ctx.IsSet("log-level") {
				c.LogLevel = ctx.String("log-level")
			}
			if err := c.Validate(); err != nil {
				return err
			}
			level, _ := log.ParseLevel(c.LogLevel)
			log.SetLevel(level)
			config = *c
			return nil
		},
		Commands: []*cli.Command{{
			Name:  "format",
			Usage: "create and format a new volume image",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "blocks",
					Usage: "size of the volume in blocks",
				},
			},
			Action: func(ctx *cli.Context) error {
				blocks := config.Blocks
				if ctx.IsSet("blocks") {
					blocks = ctx.Int("blocks")
				}
				_, err := format.CreateImage(config.Disk, blocks)
				return err
			},
		}, {
			Name:  "info",
			Usage: "print the volume geometry and free space",
			Action: withVolume(func(v *Volume, ctx *cli.Context) error {
				info, err := v.Info()
				if err != nil {
					return err
				}
				return printInfo(ctx.App.Writer, &info)
			}),
		}, {
			Name:    "ls",
			Aliases: []string{"list"},
			Usage:   "list the files on the volume",
			Action: withVolume(func(v *Volume, ctx *cli.Context) error {
				files, err := v.List()
				if err != nil {
					return err
				}
				return printList(ctx.App.Writer, files)
			}),
		}, {
			Name:      "add",
			Usage:     "copy a host file onto the volume",
			ArgsUsage: "HOSTFILE [NAME]",
			Action: withVolume(func(v *Volume, ctx *cli.Context) error {
				src := ctx.Args().Get(0)
				if src == "" {
					return fmt.Errorf("add: missing HOSTFILE argument")
				}
				name := ctx.Args().Get(1)
				if name == "" {
					name = filepath.Base(src)
				}
				data, err := os.ReadFile(src)
				if err != nil {
					return fmt.Errorf("add: %w", err)
				}
				return addFile(v, name, data)
			}),
		}, {
			Name:      "cat",
			Usage:     "print a file from the volume",
			ArgsUsage: "NAME",
			Action: withVolume(func(v *Volume, ctx *cli.Context) error {
				return catFile(v, ctx.Args().Get(0), ctx.App.Writer)
			}),
		}, {
			Name:      "rm",
			Aliases:   []string{"delete"},
			Usage:     "delete a file from the volume",
			ArgsUsage: "NAME",
			Action: withVolume(func(v *Volume, ctx *cli.Context) error {
				return v.Delete(ctx.Args().Get(0))
			}),
		}, {
			Name:      "stat",
			Usage:     "print the size of a file on the volume",
			ArgsUsage: "NAME",
			Action: withVolume(func(v *Volume, ctx *cli.Context) error {
				name := ctx.Args().Get(0)
				size, err := statFile(v, name)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(
					ctx.App.Writer,
					"Size of file '%s' is %d bytes\n",
					name,
					size,
				)
				return err
			}),
		}, {
			Name:      "pull",
			Usage:     "download a volume image from S3 to the disk path",
			ArgsUsage: "NAME",
			Action: withImages(func(s *s3image.Store, ctx *cli.Context) error {
				return s.Pull(
					context.Background(),
					imageName(ctx, config.Disk),
					config.Disk,
				)
			}),
		}, {
			Name:      "push",
			Usage:     "upload the volume image at the disk path to S3",
			ArgsUsage: "NAME",
			Action: withImages(func(s *s3image.Store, ctx *cli.Context) error {
				return s.Push(
					context.Background(),
					config.Disk,
					imageName(ctx, config.Disk),
				)
			}),
		}, {
			Name:  "images",
			Usage: "list the volume images in S3",
			Action: withImages(func(s *s3image.Store, ctx *cli.Context) error {
				names, err := s.List(context.Background())
				if err != nil {
					return err
				}
				for _, name := range names {
					if _, err := fmt.Fprintln(ctx.App.Writer, name); err != nil {
						return err
					}
				}
				return nil
			}),
		}},
	}
}

// imageName defaults the remote name to the base name of the disk image.
func imageName(ctx *cli.Context, disk string) string {
	if name := ctx.Args().Get(0); name != "" {
		return name
	}
	return filepath.Base(disk)
}

func printInfo(w io.Writer, info *filesystem.Info) error {
	_, err := fmt.Fprintf(
		w,
		"FS Info:\n"+
			"total_blk_count=%d\n"+
			"fat_blk_count=%d\n"+
			"rdir_blk=%d\n"+
			"data_blk=%d\n"+
			"data_blk_count=%d\n"+
			"fat_free_ratio=%d/%d\n"+
			"rdir_free_ratio=%d/%d\n",
		info.TotalBlocks,
		info.FATBlocks,
		info.RootDirBlock,
		info.DataStart,
		info.DataBlocks,
		info.FATFree,
		info.DataBlocks,
		info.RootDirFree,
		FileMaxCount,
	)
	return err
}
