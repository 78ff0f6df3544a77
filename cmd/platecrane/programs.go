package main

import (
	"fmt"
	"os"

	"github.com/arloliu/go-platecrane/crane"
	"github.com/arloliu/go-platecrane/logger"
	"github.com/arloliu/go-platecrane/program"
)

func openStore() (*program.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return program.NewStore(cfg.ProgramsDir)
}

type programArgs struct {
	Name string `positional-arg-name:"name" description:"Program name"`
}

type RunCommand struct {
	Args programArgs `positional-args:"yes" required:"yes"`
}

func (c *RunCommand) Execute(args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	p, err := store.Load(c.Args.Name)
	if err != nil {
		return err
	}

	return withDriver(func(d *crane.Driver) error {
		return program.NewRunner(d, logger.GetLogger()).Run(appCtx, p)
	})
}

type ProgramsCommand struct {
	List   ProgramsListCommand   `command:"list" alias:"ls" description:"List stored programs"`
	Show   ProgramsShowCommand   `command:"show" description:"Print a stored program"`
	Create ProgramsCreateCommand `command:"create" description:"Create a program from the template"`
	Save   ProgramsSaveCommand   `command:"save" description:"Check a program file and store it"`
	Delete ProgramsDeleteCommand `command:"delete" alias:"rm" description:"Delete a stored program"`
}

type ProgramsListCommand struct{}

func (c *ProgramsListCommand) Execute(args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	names, err := store.List()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Println(dimStyle.Render("no programs in " + store.Dir()))
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}

	return nil
}

type ProgramsShowCommand struct {
	Args programArgs `positional-args:"yes" required:"yes"`
}

func (c *ProgramsShowCommand) Execute(args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	p, err := store.Load(c.Args.Name)
	if err != nil {
		return err
	}
	fmt.Println(renderProgram(p))

	return nil
}

type ProgramsCreateCommand struct {
	Args programArgs `positional-args:"yes" required:"yes"`
}

func (c *ProgramsCreateCommand) Execute(args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	if err := store.Create(c.Args.Name); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("created " + c.Args.Name))

	return nil
}

type ProgramsSaveCommand struct {
	Args struct {
		Name string `positional-arg-name:"name"`
		File string `positional-arg-name:"file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *ProgramsSaveCommand) Execute(args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	src, err := os.ReadFile(c.Args.File)
	if err != nil {
		return err
	}

	if err := store.Save(c.Args.Name, string(src)); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("saved " + c.Args.Name))

	return nil
}

type ProgramsDeleteCommand struct {
	Args programArgs `positional-args:"yes" required:"yes"`
}

func (c *ProgramsDeleteCommand) Execute(args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	return store.Delete(c.Args.Name)
}
