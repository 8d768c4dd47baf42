package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/adammck/spiderbot/command"
	"github.com/adammck/spiderbot/components/controller"
	"github.com/adammck/spiderbot/components/voltage"
	"github.com/adammck/spiderbot/config"
	fakeserial "github.com/adammck/spiderbot/fake/serial"
	"github.com/adammck/spiderbot/robot"
	"github.com/adammck/spiderbot/servos"
	"github.com/adammck/spiderbot/utils"
	"github.com/benbjohnson/clock"
	"github.com/jacobsa/go-serial/serial"
	"github.com/sirupsen/logrus"
)

var (
	configPath = flag.String("config", "", "path to a YAML config file (optional)")
	portName   = flag.String("port", "", "the serial port path (overrides the config)")
	listenAddr = flag.String("listen", "", "address to accept commands on (overrides the config)")
	logLevel   = flag.String("log-level", "", "debug, info, warn, or error (overrides the config)")
	ctrlPath   = flag.String("controller", "", "path to a sixaxis input device, e.g. /dev/input/event0")
	fake       = flag.Bool("fake", false, "write servo commands to memory instead of a serial port")
)

var log = logrus.WithFields(logrus.Fields{
	"pkg": "main",
})

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	closer, err := utils.SetupLogging(cfg.Logging.Level, cfg.Logging.Path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer closer.Close()

	err = run(cfg)
	if err != nil {
		log.Errorf("%s", err)
		closer.Close()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config

	if *configPath == "" {
		c := config.Default()
		cfg = &c
	} else {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *portName != "" {
		cfg.Servos.Port = *portName
	}
	if *listenAddr != "" {
		cfg.Listener.Address = *listenAddr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	return cfg, cfg.Validate()
}

func openPort(cfg config.Servos) (io.ReadWriteCloser, error) {
	if *fake {
		log.Info("using fake serial port")
		return &fakeserial.FakeSerial{}, nil
	}

	log.Infof("opening serial port %s", cfg.Port)
	return serial.Open(serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              cfg.Baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	})
}

func run(cfg *config.Config) error {
	port, err := openPort(cfg.Servos)
	if err != nil {
		return fmt.Errorf("%s (while opening serial port)", err)
	}
	defer port.Close()

	pool, err := servos.NewPool(cfg.Servos, port)
	if err != nil {
		return fmt.Errorf("%s (while creating servos)", err)
	}

	// Relax every servo on the way out, however we got there.
	defer func() {
		err := pool.Shutdown()
		if err != nil {
			log.Warnf("%s (while shutting down servos)", err)
		}
	}()

	// Catch both SIGINT (ctrl+c) and SIGTERM (kill/systemd), to allow the robot
	// to power down its servos before exiting.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clk := clock.New()
	cmds := command.NewQueue()

	srv, err := command.NewServer(cfg.Listener.Address)
	if err != nil {
		return err
	}

	go func() {
		err := srv.Serve(ctx, cmds)
		if err != nil {
			log.Errorf("%s (while serving commands)", err)
		}
	}()

	if *ctrlPath != "" {
		f, err := os.Open(*ctrlPath)
		if err != nil {
			return fmt.Errorf("%s (while opening controller)", err)
		}
		defer f.Close()

		c := controller.New(f)
		err = c.Boot()
		if err != nil {
			return fmt.Errorf("%s (while booting controller)", err)
		}

		go c.Run(ctx, clk, cmds)
	}

	if cfg.Servos.Driver == config.DriverDynamixel {
		vc := voltage.New(pool, clk, cfg.Power)
		go func() {
			err := vc.Run(ctx)
			if err != nil {
				log.Errorf("%s, shutting down", err)
				cancel()
			}
		}()
	}

	r := robot.New(*cfg, pool, clk)
	err = r.Run(ctx, cmds)
	if err != nil {
		return err
	}

	log.Info("shutting down")
	return nil
}
