// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Command restbench provides a load-generation tool for resource
// backends, including a remote restmountd server.
package main

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/diffeo/go-restmount/backend"
	"github.com/diffeo/go-restmount/mapper"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

type benchWork struct {
	Container   mapper.Definer
	Resource    mapper.Mapper
	Concurrency int
}

func (bench *benchWork) Run(runner func()) time.Duration {
	start := time.Now()
	wg := sync.WaitGroup{}
	wg.Add(bench.Concurrency)
	for i := 0; i < bench.Concurrency; i++ {
		go func() {
			defer wg.Done()
			runner()
		}()
	}
	wg.Wait()
	return time.Since(start)
}

var bench benchWork

var addRecords = cli.Command{
	Name:  "add",
	Usage: "create many records",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of records to create",
		},
	},
	Action: func(c *cli.Context) error {
		count := c.Int("count")
		numbers := make(chan int)
		go func() {
			for i := 1; i <= count; i++ {
				numbers <- i
			}
			close(numbers)
		}()
		ctx := context.Background()
		elapsed := bench.Run(func() {
			for n := range numbers {
				_, err := bench.Resource.Create(ctx, mapper.Record{
					"name": uuid.NewV4().String(),
					"n":    n,
				}, nil)
				if err != nil {
					logrus.WithError(err).Warn("create failed")
				}
			}
		})
		logrus.WithFields(logrus.Fields{
			"count":   count,
			"elapsed": elapsed,
		}).Info("added")
		return nil
	},
}

var findRecords = cli.Command{
	Name:  "find",
	Usage: "repeatedly fetch every record",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "rounds",
			Value: 10,
			Usage: "fetch everything this many times per worker",
		},
	},
	Action: func(c *cli.Context) error {
		rounds := c.Int("rounds")
		ctx := context.Background()
		elapsed := bench.Run(func() {
			for i := 0; i < rounds; i++ {
				all, err := bench.Resource.FindAll(ctx, mapper.Query{}, nil)
				if err != nil {
					logrus.WithError(err).Warn("findAll failed")
					return
				}
				for _, record := range all {
					id, _ := mapper.Definition{Name: bench.Resource.Name()}.ID(record)
					if _, err := bench.Resource.Find(ctx, id, nil); err != nil {
						logrus.WithError(err).Warn("find failed")
					}
				}
			}
		})
		logrus.WithFields(logrus.Fields{
			"rounds":  rounds,
			"elapsed": elapsed,
		}).Info("found")
		return nil
	},
}

var clearRecords = cli.Command{
	Name:  "clear",
	Usage: "delete all of the records",
	Action: func(c *cli.Context) error {
		return bench.Resource.DestroyAll(context.Background(), mapper.Query{}, nil)
	},
}

func main() {
	backend := backend.Backend{Implementation: "memory"}
	app := cli.NewApp()
	app.Usage = "benchmark a resource backend"
	app.Flags = []cli.Flag{
		cli.GenericFlag{
			Name:  "backend",
			Value: &backend,
			Usage: "impl:[address] of resource backend",
		},
		cli.StringFlag{
			Name:  "resource",
			Value: "bench",
			Usage: "resource name",
		},
		cli.IntFlag{
			Name:  "concurrency",
			Value: runtime.NumCPU(),
			Usage: "run this many jobs in parallel",
		},
	}
	app.Commands = []cli.Command{
		addRecords,
		findRecords,
		clearRecords,
	}
	app.Before = func(c *cli.Context) (err error) {
		bench.Container, err = backend.Container()
		if err != nil {
			return
		}

		def := mapper.Definition{Name: c.String("resource")}
		bench.Resource, err = bench.Container.DefineMapper(def)
		if _, dup := err.(mapper.ErrDuplicateMapper); dup {
			bench.Resource, err = mapper.Lookup(bench.Container, def.Name)
		}
		if err != nil {
			return
		}

		bench.Concurrency = c.Int("concurrency")

		return
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("restbench failed")
	}
}
